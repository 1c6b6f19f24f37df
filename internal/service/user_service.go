package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"srmdb/internal/model"
	"srmdb/internal/ports"
	"srmdb/pkg/jwt"
	"srmdb/pkg/password"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService 账号服务：注册、登录、资料维护、搜索与公开主页
type UserService struct {
	stores     ports.Stores
	jwtService *jwt.JWTService
	notifier   ports.Notifier
}

func NewUserService(stores ports.Stores, jwtService *jwt.JWTService, notifier ports.Notifier) *UserService {
	return &UserService{stores: stores, jwtService: jwtService, notifier: notifier}
}

// Register 注册新账号并签发token
func (s *UserService) Register(username, name, email, plainPassword string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" || name == "" || email == "" || plainPassword == "" {
		return nil, "", Validationf("所有字段均为必填")
	}
	if len(username) < 3 {
		return nil, "", Validationf("用户名至少3个字符")
	}
	if !emailPattern.MatchString(email) {
		return nil, "", Validationf("邮箱格式不正确")
	}
	if err := password.Validate(plainPassword); err != nil {
		return nil, "", Validationf(err.Error())
	}

	if taken, err := s.stores.Users().UsernameTaken(username, 0); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", Validationf("用户名已被占用")
	}
	if taken, err := s.stores.Users().EmailTaken(email, 0); err != nil {
		return nil, "", err
	} else if taken {
		return nil, "", Validationf("邮箱已被注册")
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.stores.Users().Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(
		fmt.Sprintf("%d", user.ID),
		map[string]interface{}{"username": user.Username},
	)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login 登录，identifier 可为用户名或邮箱
func (s *UserService) Login(identifier, plainPassword string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", Validationf("用户名和密码均为必填")
	}

	user, err := s.stores.Users().GetByUsername(identifier)
	if err != nil || user == nil {
		user, err = s.stores.Users().GetByEmail(strings.ToLower(identifier))
	}
	if err != nil || user == nil {
		return nil, "", ErrInvalidCredential
	}
	if !password.Verify(plainPassword, user.PasswordHash) {
		return nil, "", ErrInvalidCredential
	}

	token, err := s.jwtService.GenerateToken(
		fmt.Sprintf("%d", user.ID),
		map[string]interface{}{"username": user.Username},
	)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetWithPartner 获取用户及其伴侣信息
func (s *UserService) GetWithPartner(userID uint) (*model.User, *model.User, error) {
	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrNotFound
	}
	var partner *model.User
	if user.PartnerID != nil {
		partner, _ = s.stores.Users().GetByID(*user.PartnerID)
	}
	return user, partner, nil
}

// UpdateInput 资料更新入参，为nil的字段不变更
type UpdateInput struct {
	Username       *string
	Name           *string
	Email          *string
	Password       *string
	ProfilePicture *string
}

// Update 更新账号资料，成功后发送系统通知
func (s *UserService) Update(userID uint, in UpdateInput) (*model.User, *model.User, error) {
	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrNotFound
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if len(username) < 3 {
			return nil, nil, Validationf("用户名至少3个字符")
		}
		if username != user.Username {
			taken, err := s.stores.Users().UsernameTaken(username, userID)
			if err != nil {
				return nil, nil, err
			}
			if taken {
				return nil, nil, Validationf("用户名已被占用")
			}
			user.Username = username
		}
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, nil, Validationf("显示名称不能为空")
		}
		user.Name = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if !emailPattern.MatchString(email) {
			return nil, nil, Validationf("邮箱格式不正确")
		}
		if email != user.Email {
			taken, err := s.stores.Users().EmailTaken(email, userID)
			if err != nil {
				return nil, nil, err
			}
			if taken {
				return nil, nil, Validationf("邮箱已被注册")
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		if err := password.Validate(*in.Password); err != nil {
			return nil, nil, Validationf(err.Error())
		}
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return nil, nil, err
		}
		user.PasswordHash = hash
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = *in.ProfilePicture
	}

	if err := s.stores.Users().Save(user); err != nil {
		return nil, nil, err
	}

	_ = pushNotification(s.stores, s.notifier, &model.Notification{
		UserID:  userID,
		Type:    model.NotificationSystem,
		Message: "个人资料已更新",
		Read:    false,
	})

	var partner *model.User
	if user.PartnerID != nil {
		partner, _ = s.stores.Users().GetByID(*user.PartnerID)
	}
	return user, partner, nil
}

// SearchResult 搜索结果条目，附带片单统计与可邀请状态
type SearchResult struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
	WatchedCount   int    `json:"watchedCount"`
	FavoriteCount  int    `json:"favoriteCount"`
	HasPartner     bool   `json:"hasPartner"`
	CanInvite      bool   `json:"canInvite"`
}

// Search 按用户名/显示名称模糊搜索其他账号
func (s *UserService) Search(selfID uint, query string) ([]*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, Validationf("搜索关键词不能为空")
	}

	self, err := s.stores.Users().GetByID(selfID)
	if err != nil {
		return nil, err
	}
	if self == nil {
		return nil, ErrNotFound
	}

	users, err := s.stores.Users().Search(query, selfID)
	if err != nil {
		return nil, err
	}

	results := make([]*SearchResult, 0, len(users))
	for _, u := range users {
		watched, err := s.stores.Library().CategoryEntries(u.ID, model.CategoryWatched)
		if err != nil {
			return nil, err
		}
		favorites, err := s.stores.Library().CategoryEntries(u.ID, model.CategoryFavorites)
		if err != nil {
			return nil, err
		}
		canInvite := !self.HasPartner() && !u.HasPartner()
		if canInvite {
			pending, err := s.stores.Notifications().PendingInviteExists(u.ID, selfID)
			if err != nil {
				return nil, err
			}
			canInvite = !pending
		}
		results = append(results, &SearchResult{
			ID:             u.ID,
			Username:       u.Username,
			Name:           u.Name,
			ProfilePicture: u.ProfilePicture,
			WatchedCount:   len(watched),
			FavoriteCount:  len(favorites),
			HasPartner:     u.HasPartner(),
			CanInvite:      canInvite,
		})
	}
	return results, nil
}

// Profile 公开主页：片单统计、平均评分、高频类型与最近观看
type Profile struct {
	ID             uint               `json:"id"`
	Username       string             `json:"username"`
	Name           string             `json:"name"`
	ProfilePicture string             `json:"profilePicture"`
	HasPartner     bool               `json:"hasPartner"`
	WatchedCount   int                `json:"watchedCount"`
	FavoriteCount  int                `json:"favoriteCount"`
	WatchlistCount int                `json:"watchlistCount"`
	AverageRating  float64            `json:"averageRating"`
	TopGenres      []int              `json:"topGenres"`
	RecentWatched  []model.ContentRef `json:"recentWatched"`
}

// GetProfile 按用户名查询公开主页
func (s *UserService) GetProfile(username string) (*Profile, error) {
	user, err := s.stores.Users().GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	watched, err := s.stores.Library().CategoryEntries(user.ID, model.CategoryWatched)
	if err != nil {
		return nil, err
	}
	favorites, err := s.stores.Library().CategoryEntries(user.ID, model.CategoryFavorites)
	if err != nil {
		return nil, err
	}
	watchlist, err := s.stores.Library().CategoryEntries(user.ID, model.CategoryWatchlist)
	if err != nil {
		return nil, err
	}
	reviews, err := s.stores.Reviews().ByUser(user.ID)
	if err != nil {
		return nil, err
	}

	avg := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		avg = float64(sum) / float64(len(reviews))
	}

	// 观看记录按时间倒序，取最近5条
	sort.Slice(watched, func(i, j int) bool {
		return watched[i].CreatedAt.After(watched[j].CreatedAt)
	})
	recent := make([]model.ContentRef, 0, 5)
	for i, e := range watched {
		if i >= 5 {
			break
		}
		recent = append(recent, e.ToContentRef())
	}

	return &Profile{
		ID:             user.ID,
		Username:       user.Username,
		Name:           user.Name,
		ProfilePicture: user.ProfilePicture,
		HasPartner:     user.HasPartner(),
		WatchedCount:   len(watched),
		FavoriteCount:  len(favorites),
		WatchlistCount: len(watchlist),
		AverageRating:  avg,
		TopGenres:      topGenres(watched, 3),
		RecentWatched:  recent,
	}, nil
}

// topGenres 统计观看记录中出现最多的类型ID
func topGenres(entries []*model.LibraryEntry, limit int) []int {
	counts := make(map[int]int)
	for _, e := range entries {
		for _, id := range model.SplitGenreIDs(e.GenreIDs) {
			counts[id]++
		}
	}
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}
