package service

import (
	"errors"
	"testing"
	"time"

	"srmdb/config"
	"srmdb/internal/model"
	"srmdb/pkg/jwt"
)

func newUserService(s *memStores) *UserService {
	jwtSvc := jwt.NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		ExpireTime: time.Hour,
		Issuer:     "srmdb-test",
	})
	return NewUserService(s, jwtSvc, &recordNotifier{})
}

func TestRegisterValidation(t *testing.T) {
	s := newMemStores()
	svc := newUserService(s)

	tests := []struct {
		name                           string
		username, display, email, pass string
	}{
		{"缺少字段", "", "Alice", "a@b.com", "secret1"},
		{"用户名过短", "ab", "Alice", "a@b.com", "secret1"},
		{"邮箱格式错误", "alice", "Alice", "not-an-email", "secret1"},
		{"密码过短", "alice", "Alice", "a@b.com", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Register(tt.username, tt.display, tt.email, tt.pass); !errors.Is(err, ErrValidation) {
				t.Fatalf("Register() = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newMemStores()
	svc := newUserService(s)

	user, token, err := svc.Register("alice", "Alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if user.ID == 0 || token == "" {
		t.Fatalf("注册结果异常: id=%d token=%q", user.ID, token)
	}
	if user.PasswordHash == "secret1" {
		t.Fatal("密码不应明文存储")
	}

	// 重复用户名/邮箱
	if _, _, err := svc.Register("alice", "Other", "other@example.com", "secret1"); !errors.Is(err, ErrValidation) {
		t.Errorf("重复用户名 Register() = %v, want ErrValidation", err)
	}
	if _, _, err := svc.Register("other", "Other", "alice@example.com", "secret1"); !errors.Is(err, ErrValidation) {
		t.Errorf("重复邮箱 Register() = %v, want ErrValidation", err)
	}

	// 用户名或邮箱均可登录
	if _, _, err := svc.Login("alice", "secret1"); err != nil {
		t.Errorf("用户名登录 = %v", err)
	}
	if _, _, err := svc.Login("alice@example.com", "secret1"); err != nil {
		t.Errorf("邮箱登录 = %v", err)
	}
	if _, _, err := svc.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("错误密码登录 = %v, want ErrInvalidCredential", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newMemStores()
	svc := newUserService(s)

	user, _, err := svc.Register("alice", "Alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if _, _, err := svc.Register("bob", "Bob", "bob@example.com", "secret1"); err != nil {
		t.Fatalf("Register(bob) = %v", err)
	}

	// 改成已被占用的用户名
	taken := "bob"
	if _, _, err := svc.Update(user.ID, UpdateInput{Username: &taken}); !errors.Is(err, ErrValidation) {
		t.Errorf("占用用户名 Update() = %v, want ErrValidation", err)
	}

	name := "Alice Liddell"
	updated, _, err := svc.Update(user.ID, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("Update() = %v", err)
	}
	if updated.Name != name {
		t.Errorf("更新后Name = %q", updated.Name)
	}

	// 资料更新产生系统通知
	notifications, _ := s.Notifications().ByUser(user.ID)
	found := false
	for _, n := range notifications {
		if n.Type == model.NotificationSystem {
			found = true
		}
	}
	if !found {
		t.Error("资料更新后应有系统通知")
	}
}

func TestSearchUsers(t *testing.T) {
	s := newMemStores()
	svc := newUserService(s)
	partnerSvc := NewPartnerService(s, &recordNotifier{})

	alice, _, _ := svc.Register("alice", "Alice", "alice@example.com", "secret1")
	bob, _, _ := svc.Register("bob", "Bob", "bob@example.com", "secret1")
	carol, _, _ := svc.Register("carol", "Bobette", "carol@example.com", "secret1")

	// 搜索结果排除自己，按用户名或显示名称匹配
	results, err := svc.Search(alice.ID, "bob")
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	if len(results) != 1 || results[0].ID != bob.ID {
		t.Fatalf("搜索bob结果 = %+v", results)
	}
	if !results[0].CanInvite {
		t.Error("双方均无伴侣时应可邀请")
	}

	// 发出邀请后不再显示可邀请
	if err := partnerSvc.Request(alice.ID, bob.ID); err != nil {
		t.Fatalf("Request() = %v", err)
	}
	results, _ = svc.Search(alice.ID, "bob")
	if results[0].CanInvite {
		t.Error("已有未决邀请时不应重复邀请")
	}

	// 显示名称匹配
	results, _ = svc.Search(bob.ID, "Bobette")
	if len(results) != 1 || results[0].ID != carol.ID {
		t.Fatalf("按显示名称搜索结果 = %+v", results)
	}
}

func TestGetProfile(t *testing.T) {
	s := newMemStores()
	svc := newUserService(s)
	libSvc := NewLibraryService(s, &recordNotifier{})
	reviewSvc := NewReviewService(s, libSvc, &recordNotifier{})

	alice, _, _ := svc.Register("alice", "Alice", "alice@example.com", "secret1")

	movies := []*ContentInput{
		{ID: "1", Title: "A", Type: model.MediaTypeMovie, GenreIDs: []int{28, 12}},
		{ID: "2", Title: "B", Type: model.MediaTypeMovie, GenreIDs: []int{28}},
		{ID: "3", Title: "C", Type: model.MediaTypeMovie, GenreIDs: []int{18}},
	}
	for _, m := range movies {
		if _, err := libSvc.MarkWatched(alice.ID, WatchedModeUser, m); err != nil {
			t.Fatalf("MarkWatched(%s) = %v", m.ID, err)
		}
	}
	if _, err := reviewSvc.Save(alice.ID, "1", model.MediaTypeMovie, 5, ""); err != nil {
		t.Fatalf("Save review = %v", err)
	}
	if _, err := reviewSvc.Save(alice.ID, "2", model.MediaTypeMovie, 3, ""); err != nil {
		t.Fatalf("Save review = %v", err)
	}

	profile, err := svc.GetProfile("alice")
	if err != nil {
		t.Fatalf("GetProfile() = %v", err)
	}
	if profile.WatchedCount != 3 {
		t.Errorf("WatchedCount = %d, want 3", profile.WatchedCount)
	}
	if profile.AverageRating != 4.0 {
		t.Errorf("AverageRating = %v, want 4.0", profile.AverageRating)
	}
	if len(profile.TopGenres) == 0 || profile.TopGenres[0] != 28 {
		t.Errorf("TopGenres = %v, want 28在首位", profile.TopGenres)
	}
	if len(profile.RecentWatched) != 3 {
		t.Errorf("RecentWatched条数 = %d", len(profile.RecentWatched))
	}

	if _, err := svc.GetProfile("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProfile(nobody) = %v, want ErrNotFound", err)
	}
}
