package service

import (
	"errors"
	"testing"

	"srmdb/internal/model"
)

func newReviewFixture(t *testing.T) (*memStores, *LibraryService, *ReviewService, uint, uint) {
	t.Helper()
	s := newMemStores()
	notifier := &recordNotifier{}
	libSvc := NewLibraryService(s, notifier)
	reviewSvc := NewReviewService(s, libSvc, notifier)
	partnerSvc := NewPartnerService(s, notifier)
	aliceID, bobID := seedPair(s)
	linkPair(t, s, partnerSvc, aliceID, bobID)
	return s, libSvc, reviewSvc, aliceID, bobID
}

// 未观看的内容不能评分
func TestSaveReviewRequiresWatched(t *testing.T) {
	_, _, reviewSvc, aliceID, _ := newReviewFixture(t)

	if _, err := reviewSvc.Save(aliceID, "603", model.MediaTypeMovie, 4, ""); !errors.Is(err, ErrNotWatched) {
		t.Fatalf("未观看评分 = %v, want ErrNotWatched", err)
	}
}

func TestSaveReviewValidation(t *testing.T) {
	_, _, reviewSvc, aliceID, _ := newReviewFixture(t)

	tests := []struct {
		name      string
		contentID string
		rating    int
	}{
		{"评分过低", "603", 0},
		{"评分过高", "603", 6},
		{"内容ID为空", "", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reviewSvc.Save(aliceID, tt.contentID, model.MediaTypeMovie, tt.rating, ""); !errors.Is(err, ErrValidation) {
				t.Fatalf("Save() = %v, want ErrValidation", err)
			}
		})
	}
}

// 保存评分后双方视角互见，重复保存覆盖
func TestSaveAndGetReview(t *testing.T) {
	_, libSvc, reviewSvc, aliceID, bobID := newReviewFixture(t)
	movie := &ContentInput{ID: "550", Title: "Fight Club", Type: model.MediaTypeMovie}

	if _, err := libSvc.MarkWatched(aliceID, WatchedModeTogether, movie); err != nil {
		t.Fatalf("MarkWatched = %v", err)
	}

	result, err := reviewSvc.Save(aliceID, movie.ID, model.MediaTypeMovie, 4, "不错")
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if result.UserReview.Rating != 4 || result.UserReview.Comment != "不错" {
		t.Errorf("UserReview = %+v", result.UserReview)
	}
	if result.PartnerReview.Rating != 0 {
		t.Errorf("伴侣未评分时 PartnerReview = %+v", result.PartnerReview)
	}

	// 覆盖保存
	if _, err := reviewSvc.Save(aliceID, movie.ID, model.MediaTypeMovie, 5, "二刷更好"); err != nil {
		t.Fatalf("覆盖 Save() = %v", err)
	}

	// 伴侣视角：自己未评分，对方评分可见
	got, err := reviewSvc.Get(bobID, movie.ID, model.MediaTypeMovie)
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if got.UserReview.Rating != 0 {
		t.Errorf("bob的UserReview = %+v", got.UserReview)
	}
	if got.PartnerReview.Rating != 5 || got.PartnerReview.Comment != "二刷更好" {
		t.Errorf("bob看到的PartnerReview = %+v", got.PartnerReview)
	}
	if got.WatchedStatus == nil || !got.WatchedStatus.Together {
		t.Errorf("WatchedStatus = %+v", got.WatchedStatus)
	}
}
