package service

import (
	"context"
	"strconv"

	"srmdb/internal/model"
	"srmdb/internal/ports"
	"srmdb/pkg/tmdb"
)

// 推荐模式
const (
	RecommendPersonal = "personal"
	RecommendPartner  = "partner"
	RecommendShared   = "shared"
)

const (
	maxSeedFavorites  = 8  // 每次取前几部收藏作为种子
	defaultRecommends = 40 // 默认返回条数上限
)

// RecommendService 推荐服务
// 基于收藏列表向外部目录请求相似作品做透传式推荐；
// shared 模式同时重算并持久化双方的兼容度评分
type RecommendService struct {
	stores  ports.Stores
	catalog Catalog
}

func NewRecommendService(stores ports.Stores, catalog Catalog) *RecommendService {
	return &RecommendService{stores: stores, catalog: catalog}
}

// Recommend 生成推荐列表
func (s *RecommendService) Recommend(ctx context.Context, userID uint, mode string, limit int) ([]tmdb.Item, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultRecommends
	}

	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	var seeds []*model.LibraryEntry
	switch mode {
	case RecommendPersonal:
		seeds, err = s.stores.Library().CategoryEntries(userID, model.CategoryFavorites)
	case RecommendPartner:
		if !user.HasPartner() {
			return nil, ErrNotPartnered
		}
		seeds, err = s.stores.Library().CategoryEntries(*user.PartnerID, model.CategoryFavorites)
	case RecommendShared:
		if !user.HasPartner() {
			return nil, ErrNotPartnered
		}
		seeds, err = s.sharedSeeds(user)
	default:
		return nil, Validationf("无效的推荐模式: " + mode)
	}
	if err != nil {
		return nil, err
	}

	// 没有种子时退回热门榜单
	if len(seeds) == 0 {
		page, err := s.catalog.Popular(ctx, model.MediaTypeMovie, 1)
		if err != nil {
			return nil, err
		}
		if len(page.Results) > limit {
			return page.Results[:limit], nil
		}
		return page.Results, nil
	}

	// 种子ID集合，推荐结果中剔除已收藏的作品
	seedIDs := make(map[int]bool, len(seeds))
	for _, e := range seeds {
		if id, err := strconv.Atoi(e.ContentID); err == nil {
			seedIDs[id] = true
		}
	}

	var items []tmdb.Item
	seen := make(map[int]bool)
	count := 0
	for _, e := range seeds {
		if count >= maxSeedFavorites {
			break
		}
		if e.MediaType != model.MediaTypeMovie {
			continue
		}
		movieID, err := strconv.Atoi(e.ContentID)
		if err != nil {
			continue
		}
		count++

		page, err := s.catalog.Similar(ctx, movieID)
		if err != nil {
			continue // 单个种子失败不影响整体
		}
		for _, item := range page.Results {
			if seen[item.ID] || seedIDs[item.ID] {
				continue
			}
			seen[item.ID] = true
			items = append(items, item)
			if len(items) >= limit {
				return items, nil
			}
		}
	}
	return items, nil
}

// sharedSeeds shared模式的种子：双方收藏的并集；顺带重算兼容度
func (s *RecommendService) sharedSeeds(user *model.User) ([]*model.LibraryEntry, error) {
	partnerID := *user.PartnerID
	mine, err := s.stores.Library().CategoryEntries(user.ID, model.CategoryFavorites)
	if err != nil {
		return nil, err
	}
	theirs, err := s.stores.Library().CategoryEntries(partnerID, model.CategoryFavorites)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var seeds []*model.LibraryEntry
	for _, e := range append(mine, theirs...) {
		if seen[e.ContentID] {
			continue
		}
		seen[e.ContentID] = true
		seeds = append(seeds, e)
	}

	if err := s.RecomputeCompatibility(user.ID, partnerID); err != nil {
		return nil, err
	}
	return seeds, nil
}

// RecomputeCompatibility 对共享watched列表整表重算兼容度并覆盖持久化
// 分数规则：双方都评过分时为 100-|评分差|*20，任一方未评分时默认50
func (s *RecommendService) RecomputeCompatibility(userID, partnerID uint) error {
	low, high := model.PairKey(userID, partnerID)
	shared, err := s.stores.Shared().GetByPair(low, high)
	if err != nil || shared == nil {
		return err
	}

	entries, err := s.stores.Shared().Entries(shared.ID)
	if err != nil {
		return err
	}
	myReviews, err := s.stores.Reviews().ByUser(userID)
	if err != nil {
		return err
	}
	partnerReviews, err := s.stores.Reviews().ByUser(partnerID)
	if err != nil {
		return err
	}
	mine := reviewsByKey(myReviews)
	theirs := reviewsByKey(partnerReviews)

	var compat []*model.CompatibilityEntry
	for _, e := range entries {
		if e.List != model.SharedListWatched {
			continue
		}
		key := reviewKey(e.ContentID, e.MediaType)
		a, b := 0, 0
		if r, ok := mine[key]; ok {
			a = r.Rating
		}
		if r, ok := theirs[key]; ok {
			b = r.Rating
		}
		compat = append(compat, &model.CompatibilityEntry{
			SharedLibraryID: shared.ID,
			ContentID:       e.ContentID,
			MediaType:       e.MediaType,
			Title:           e.Title,
			PosterPath:      e.PosterPath,
			ReleaseDate:     e.ReleaseDate,
			VoteAverage:     e.VoteAverage,
			Score:           compatibilityScore(a, b),
		})
	}
	return s.stores.Shared().ReplaceCompatibility(shared.ID, compat)
}
