package service

import (
	"srmdb/internal/model"
	"srmdb/internal/ports"
)

// 片单分类规则（纯函数部分），校验顺序固定：
// 1. 分类名合法性
// 2. favorites/disliked 互斥
// 3. favorites/disliked 需要已观看
// 4. watchlist 与 watched 互斥
// 5. watchedTogether 需要已绑定伴侣
// 6. 同分类重复添加
func validateAdd(lib ports.LibraryStore, userID uint, category, contentID string, hasPartner bool) error {
	if !model.IsValidCategory(category) {
		return Validationf("无效的片单分类: " + category)
	}

	switch category {
	case model.CategoryFavorites:
		if in, err := lib.Has(userID, model.CategoryDisliked, contentID); err != nil {
			return err
		} else if in {
			return Validationf("该内容已在不喜欢列表中，不能同时收藏")
		}
	case model.CategoryDisliked:
		if in, err := lib.Has(userID, model.CategoryFavorites, contentID); err != nil {
			return err
		} else if in {
			return Validationf("该内容已在收藏列表中，不能同时标记不喜欢")
		}
	}

	if categoryRequiresWatched(category) {
		watched, err := lib.Has(userID, model.CategoryWatched, contentID)
		if err != nil {
			return err
		}
		if !watched {
			return ErrNotWatched
		}
	}

	if category == model.CategoryWatchlist {
		watched, err := lib.Has(userID, model.CategoryWatched, contentID)
		if err != nil {
			return err
		}
		if watched {
			return Validationf("已观看的内容不能加入待看列表")
		}
	}

	if category == model.CategoryWatchedTogether && !hasPartner {
		return ErrNotPartnered
	}

	exists, err := lib.Has(userID, category, contentID)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}
	return nil
}

// categoryRequiresWatched 判断分类是否以已观看为前置条件
// 仅 favorites/disliked 要求先观看，liked 与 watchedTogether 不设前置
func categoryRequiresWatched(category string) bool {
	return category == model.CategoryFavorites || category == model.CategoryDisliked
}

// watchedCascadeCategories 内容被移出watched时需要级联清理的分类
var watchedCascadeCategories = []string{
	model.CategoryWatched,
	model.CategoryWatchedTogether,
	model.CategoryFavorites,
	model.CategoryDisliked,
	model.CategoryLiked,
}

// compatibilityScore 兼容度分数：双方都评过分（>0）时为 100-|差|*20，否则50
func compatibilityScore(a, b int) int {
	if a > 0 && b > 0 {
		diff := a - b
		if diff < 0 {
			diff = -diff
		}
		score := 100 - diff*20
		if score < 0 {
			score = 0
		}
		return score
	}
	return 50
}
