package service

import (
	"errors"
	"testing"

	"srmdb/internal/model"
	"srmdb/pkg/websocket"
)

func newLibraryFixture(t *testing.T) (*memStores, *recordNotifier, *LibraryService, uint, uint) {
	t.Helper()
	s := newMemStores()
	notifier := &recordNotifier{}
	libSvc := NewLibraryService(s, notifier)
	partnerSvc := NewPartnerService(s, notifier)
	aliceID, bobID := seedPair(s)
	linkPair(t, s, partnerSvc, aliceID, bobID)
	return s, notifier, libSvc, aliceID, bobID
}

// 待看 -> 观看 -> 收藏的典型流转
func TestWatchlistToWatchedFlow(t *testing.T) {
	s, _, svc, aliceID, _ := newLibraryFixture(t)
	movie := &ContentInput{ID: "603", Title: "The Matrix", Type: model.MediaTypeMovie, GenreIDs: []int{28, 878}}

	if err := svc.AddToCategory(aliceID, model.CategoryWatchlist, movie); err != nil {
		t.Fatalf("加入待看 = %v", err)
	}
	// 未观看时不能收藏
	if err := svc.AddToCategory(aliceID, model.CategoryFavorites, movie); !errors.Is(err, ErrNotWatched) {
		t.Fatalf("未观看收藏 = %v, want ErrNotWatched", err)
	}

	if _, err := svc.MarkWatched(aliceID, WatchedModeUser, movie); err != nil {
		t.Fatalf("MarkWatched(user) = %v", err)
	}
	// 标记观看后自动移出待看列表
	inWatchlist, _ := s.Library().Has(aliceID, model.CategoryWatchlist, movie.ID)
	if inWatchlist {
		t.Error("标记观看后应移出待看列表")
	}

	// 重复标记观看返回冲突
	if _, err := svc.MarkWatched(aliceID, WatchedModeUser, movie); !errors.Is(err, ErrConflict) {
		t.Fatalf("重复标记观看 = %v, want ErrConflict", err)
	}

	if err := svc.AddToCategory(aliceID, model.CategoryFavorites, movie); err != nil {
		t.Fatalf("观看后收藏 = %v", err)
	}
	// 收藏后不能再标记不喜欢
	if err := svc.AddToCategory(aliceID, model.CategoryDisliked, movie); !errors.Is(err, ErrValidation) {
		t.Fatalf("收藏后标记不喜欢 = %v, want ErrValidation", err)
	}
}

// 移出watched时级联清理依赖分类并删除评分
func TestRemoveWatchedCascade(t *testing.T) {
	s, _, svc, aliceID, _ := newLibraryFixture(t)
	reviewSvc := NewReviewService(s, svc, &recordNotifier{})
	movie := &ContentInput{ID: "603", Title: "The Matrix", Type: model.MediaTypeMovie}

	if _, err := svc.MarkWatched(aliceID, WatchedModeUser, movie); err != nil {
		t.Fatalf("MarkWatched(user) = %v", err)
	}
	if err := svc.AddToCategory(aliceID, model.CategoryFavorites, movie); err != nil {
		t.Fatalf("收藏 = %v", err)
	}
	if _, err := reviewSvc.Save(aliceID, movie.ID, model.MediaTypeMovie, 5, "经典"); err != nil {
		t.Fatalf("Save review = %v", err)
	}

	if err := svc.RemoveFromCategory(aliceID, model.CategoryWatched, movie.ID); err != nil {
		t.Fatalf("移出watched = %v", err)
	}

	for _, category := range []string{model.CategoryWatched, model.CategoryFavorites} {
		if in, _ := s.Library().Has(aliceID, category, movie.ID); in {
			t.Errorf("级联清理后 %s 中仍存在该内容", category)
		}
	}
	if r, _ := s.Reviews().Get(aliceID, movie.ID, model.MediaTypeMovie); r != nil {
		t.Error("级联清理后评分应被删除")
	}

	// 重复移除返回404
	if err := svc.RemoveFromCategory(aliceID, model.CategoryWatched, movie.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("重复移除 = %v, want ErrNotFound", err)
	}
}

// 移出watchedTogether与移出watched同义：同样走完整级联
func TestRemoveWatchedTogetherCascades(t *testing.T) {
	s, _, svc, aliceID, _ := newLibraryFixture(t)
	reviewSvc := NewReviewService(s, svc, &recordNotifier{})
	movie := &ContentInput{ID: "550", Title: "Fight Club", Type: model.MediaTypeMovie}

	if _, err := svc.MarkWatched(aliceID, WatchedModeTogether, movie); err != nil {
		t.Fatalf("MarkWatched(together) = %v", err)
	}
	if err := svc.AddToCategory(aliceID, model.CategoryFavorites, movie); err != nil {
		t.Fatalf("收藏 = %v", err)
	}
	if _, err := reviewSvc.Save(aliceID, movie.ID, model.MediaTypeMovie, 5, ""); err != nil {
		t.Fatalf("Save review = %v", err)
	}

	if err := svc.RemoveFromCategory(aliceID, model.CategoryWatchedTogether, movie.ID); err != nil {
		t.Fatalf("移出watchedTogether = %v", err)
	}

	for _, category := range []string{model.CategoryWatched, model.CategoryWatchedTogether, model.CategoryFavorites} {
		if in, _ := s.Library().Has(aliceID, category, movie.ID); in {
			t.Errorf("移出watchedTogether后 %s 中仍保留该内容", category)
		}
	}
	if r, _ := s.Reviews().Get(aliceID, movie.ID, model.MediaTypeMovie); r != nil {
		t.Error("移出watchedTogether后评分应被删除")
	}
}

// 取消观看时伴侣的共同观看记录与共享片单一并清理，伴侣自己的评分保留
func TestRemoveWatchedMirrorsPartner(t *testing.T) {
	s, _, svc, aliceID, bobID := newLibraryFixture(t)
	reviewSvc := NewReviewService(s, svc, &recordNotifier{})
	movie := &ContentInput{ID: "550", Title: "Fight Club", Type: model.MediaTypeMovie}

	if _, err := svc.MarkWatched(aliceID, WatchedModeTogether, movie); err != nil {
		t.Fatalf("MarkWatched(together) = %v", err)
	}
	if _, err := reviewSvc.Save(bobID, movie.ID, model.MediaTypeMovie, 4, ""); err != nil {
		t.Fatalf("bob评分 = %v", err)
	}

	// 共享favorites中同一内容也应被清理
	low, high := model.PairKey(aliceID, bobID)
	shared, _ := s.Shared().GetByPair(low, high)
	if err := s.Shared().AddEntry(&model.SharedEntry{
		SharedLibraryID: shared.ID,
		List:            model.SharedListFavorites,
		ContentID:       movie.ID,
		MediaType:       model.MediaTypeMovie,
		Title:           movie.Title,
	}); err != nil {
		t.Fatalf("AddEntry = %v", err)
	}

	if err := svc.RemoveFromCategory(aliceID, model.CategoryWatched, movie.ID); err != nil {
		t.Fatalf("移出watched = %v", err)
	}

	for _, id := range []uint{aliceID, bobID} {
		for _, category := range []string{model.CategoryWatched, model.CategoryWatchedTogether} {
			if in, _ := s.Library().Has(id, category, movie.ID); in {
				t.Errorf("用户%d的 %s 中仍保留该内容", id, category)
			}
		}
	}
	if entries, _ := s.Shared().Entries(shared.ID); len(entries) != 0 {
		t.Errorf("共享片单仍保留条目 = %+v", entries)
	}
	// 伴侣的评分不随发起方的取消观看删除
	if r, _ := s.Reviews().Get(bobID, movie.ID, model.MediaTypeMovie); r == nil {
		t.Error("伴侣的评分不应被删除")
	}
}

// 共同观看：双方片单与共享片单同步更新，伴侣收到推送
func TestMarkWatchedTogether(t *testing.T) {
	s, notifier, svc, aliceID, bobID := newLibraryFixture(t)
	movie := &ContentInput{ID: "550", Title: "Fight Club", Type: model.MediaTypeMovie}

	status, err := svc.MarkWatched(aliceID, WatchedModeTogether, movie)
	if err != nil {
		t.Fatalf("MarkWatched(together) = %v", err)
	}
	if !status.User || !status.Partner || !status.Together {
		t.Errorf("watchedStatus = %+v, want 全部为true", status)
	}

	for _, id := range []uint{aliceID, bobID} {
		watched, _ := s.Library().CategoryEntries(id, model.CategoryWatched)
		if len(watched) != 1 || !watched[0].WatchedTogether {
			t.Errorf("用户%d的watched记录 = %+v", id, watched)
		}
		if in, _ := s.Library().Has(id, model.CategoryWatchedTogether, movie.ID); !in {
			t.Errorf("用户%d缺少watchedTogether分类记录", id)
		}
	}

	low, high := model.PairKey(aliceID, bobID)
	shared, _ := s.Shared().GetByPair(low, high)
	entries, _ := s.Shared().Entries(shared.ID)
	if len(entries) != 1 || entries[0].List != model.SharedListWatched {
		t.Fatalf("共享watched条目 = %+v", entries)
	}

	// 伴侣收到libraryUpdate与sharedLibraryUpdate推送
	if !notifier.received(bobID, websocket.EventLibraryUpdate) {
		t.Error("伴侣未收到 libraryUpdate")
	}
	if !notifier.received(bobID, websocket.EventSharedLibraryUpdate) {
		t.Error("伴侣未收到 sharedLibraryUpdate")
	}
	// 伴侣收到通知
	count, _ := s.Notifications().UnreadCount(bobID)
	if count == 0 {
		t.Error("伴侣应收到未读通知")
	}
}

// 自己已观看后再标记共同观看同样视为重复，返回冲突
func TestMarkWatchedTogetherAfterUserConflict(t *testing.T) {
	_, _, svc, aliceID, _ := newLibraryFixture(t)
	movie := &ContentInput{ID: "550", Title: "Fight Club", Type: model.MediaTypeMovie}

	if _, err := svc.MarkWatched(aliceID, WatchedModeUser, movie); err != nil {
		t.Fatalf("MarkWatched(user) = %v", err)
	}
	if _, err := svc.MarkWatched(aliceID, WatchedModeTogether, movie); !errors.Is(err, ErrConflict) {
		t.Fatalf("已观看后标记共同观看 = %v, want ErrConflict", err)
	}
}

func TestMarkWatchedTogetherWithoutPartner(t *testing.T) {
	s := newMemStores()
	svc := NewLibraryService(s, &recordNotifier{})
	aliceID, _ := seedPair(s)

	movie := &ContentInput{ID: "550", Title: "Fight Club"}
	if _, err := svc.MarkWatched(aliceID, WatchedModeTogether, movie); !errors.Is(err, ErrNotPartnered) {
		t.Fatalf("无伴侣共同观看 = %v, want ErrNotPartnered", err)
	}
}

// 片单读取时评分从review表联查填充
func TestGetLibraryJoinsReviews(t *testing.T) {
	s, _, svc, aliceID, bobID := newLibraryFixture(t)
	reviewSvc := NewReviewService(s, svc, &recordNotifier{})
	movie := &ContentInput{ID: "603", Title: "The Matrix", Type: model.MediaTypeMovie}

	if _, err := svc.MarkWatched(aliceID, WatchedModeUser, movie); err != nil {
		t.Fatalf("MarkWatched = %v", err)
	}
	if _, err := reviewSvc.Save(aliceID, movie.ID, model.MediaTypeMovie, 4, "不错"); err != nil {
		t.Fatalf("Save review = %v", err)
	}

	library, err := svc.GetLibrary(aliceID)
	if err != nil {
		t.Fatalf("GetLibrary() = %v", err)
	}
	watched := library[model.CategoryWatched]
	if len(watched) != 1 {
		t.Fatalf("watched条目数 = %d", len(watched))
	}
	if watched[0].UserRating != 4 || watched[0].UserComment != "不错" {
		t.Errorf("评分联查结果 = rating %d comment %q", watched[0].UserRating, watched[0].UserComment)
	}

	// 伴侣视角读取时填充的是伴侣（alice）的评分
	partnerView, err := svc.GetPartnerLibrary(bobID)
	if err != nil {
		t.Fatalf("GetPartnerLibrary() = %v", err)
	}
	if got := partnerView[model.CategoryWatched][0].UserRating; got != 4 {
		t.Errorf("伴侣片单评分 = %d, want 4", got)
	}
}

func TestGetPartnerLibraryWithoutPartner(t *testing.T) {
	s := newMemStores()
	svc := NewLibraryService(s, &recordNotifier{})
	aliceID, _ := seedPair(s)

	if _, err := svc.GetPartnerLibrary(aliceID); !errors.Is(err, ErrNotPartnered) {
		t.Fatalf("GetPartnerLibrary() = %v, want ErrNotPartnered", err)
	}
}

// 共享片单视图填充双方评分
func TestGetSharedLibrary(t *testing.T) {
	s, _, svc, aliceID, bobID := newLibraryFixture(t)
	notifier := &recordNotifier{}
	reviewSvc := NewReviewService(s, svc, notifier)
	movie := &ContentInput{ID: "550", Title: "Fight Club", Type: model.MediaTypeMovie}

	if _, err := svc.MarkWatched(aliceID, WatchedModeTogether, movie); err != nil {
		t.Fatalf("MarkWatched(together) = %v", err)
	}
	if _, err := reviewSvc.Save(aliceID, movie.ID, model.MediaTypeMovie, 5, ""); err != nil {
		t.Fatalf("alice评分 = %v", err)
	}
	if _, err := reviewSvc.Save(bobID, movie.ID, model.MediaTypeMovie, 3, ""); err != nil {
		t.Fatalf("bob评分 = %v", err)
	}

	view, err := svc.GetSharedLibrary(aliceID)
	if err != nil {
		t.Fatalf("GetSharedLibrary() = %v", err)
	}
	if len(view.Watched) != 1 {
		t.Fatalf("共享watched条目数 = %d", len(view.Watched))
	}
	if view.Watched[0].UserRating != 5 || view.Watched[0].PartnerRating != 3 {
		t.Errorf("共享watched评分 = user %d partner %d", view.Watched[0].UserRating, view.Watched[0].PartnerRating)
	}
}
