package service

import (
	"errors"
	"testing"

	"srmdb/internal/model"
)

func TestCompatibilityScore(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want int
	}{
		{"双方同分", 5, 5, 100},
		{"相差一分", 4, 5, 80},
		{"相差两分", 3, 5, 60},
		{"最大差距", 1, 5, 20},
		{"自己未评分", 0, 5, 50},
		{"对方未评分", 3, 0, 50},
		{"双方都未评分", 0, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compatibilityScore(tt.a, tt.b); got != tt.want {
				t.Errorf("compatibilityScore(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValidateAdd(t *testing.T) {
	setup := func() *memStores {
		s := newMemStores()
		// 已观看101，102在不喜欢列表（也已观看），103在收藏（也已观看）
		_ = s.Library().Add(&model.LibraryEntry{UserID: 1, Category: model.CategoryWatched, ContentID: "101"})
		_ = s.Library().Add(&model.LibraryEntry{UserID: 1, Category: model.CategoryWatched, ContentID: "102"})
		_ = s.Library().Add(&model.LibraryEntry{UserID: 1, Category: model.CategoryDisliked, ContentID: "102"})
		_ = s.Library().Add(&model.LibraryEntry{UserID: 1, Category: model.CategoryWatched, ContentID: "103"})
		_ = s.Library().Add(&model.LibraryEntry{UserID: 1, Category: model.CategoryFavorites, ContentID: "103"})
		return s
	}

	tests := []struct {
		name       string
		category   string
		contentID  string
		hasPartner bool
		wantErr    error
	}{
		{"未知分类", "bogus", "101", false, ErrValidation},
		{"收藏已观看的内容", model.CategoryFavorites, "101", false, nil},
		{"收藏未观看的内容", model.CategoryFavorites, "999", false, ErrNotWatched},
		{"收藏已在不喜欢列表的内容", model.CategoryFavorites, "102", false, ErrValidation},
		{"不喜欢已收藏的内容", model.CategoryDisliked, "103", false, ErrValidation},
		{"已观看内容加入待看", model.CategoryWatchlist, "101", false, ErrValidation},
		{"未观看内容加入待看", model.CategoryWatchlist, "999", false, nil},
		{"重复收藏", model.CategoryFavorites, "103", false, ErrConflict},
		{"喜欢不要求已观看", model.CategoryLiked, "999", false, nil},
		{"无伴侣标记共同观看", model.CategoryWatchedTogether, "101", false, ErrNotPartnered},
		{"有伴侣标记共同观看", model.CategoryWatchedTogether, "101", true, nil},
		{"共同观看不要求已观看", model.CategoryWatchedTogether, "999", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setup()
			err := validateAdd(s.Library(), 1, tt.category, tt.contentID, tt.hasPartner)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("validateAdd() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("validateAdd() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
