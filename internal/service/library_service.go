package service

import (
	"fmt"
	"time"

	"srmdb/internal/model"
	"srmdb/internal/ports"
	"srmdb/pkg/websocket"
)

// ContentInput 片单写操作的内容入参
type ContentInput struct {
	ID          string  `json:"id" binding:"required"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Type        string  `json:"type"`
	GenreIDs    []int   `json:"genre_ids"`
}

func (in *ContentInput) mediaType() string {
	if model.IsValidMediaType(in.Type) {
		return in.Type
	}
	return model.MediaTypeMovie
}

// WatchedStatus 某内容的观看状态
type WatchedStatus struct {
	User     bool `json:"user"`
	Partner  bool `json:"partner"`
	Together bool `json:"together"`
}

// LibraryService 个人与共享片单服务
// 评分数据以 review 表为单一数据源，读取片单时按 (内容, 媒体类型) 联查填充
type LibraryService struct {
	stores   ports.Stores
	notifier ports.Notifier
}

func NewLibraryService(stores ports.Stores, notifier ports.Notifier) *LibraryService {
	return &LibraryService{stores: stores, notifier: notifier}
}

func reviewKey(contentID, mediaType string) string {
	return contentID + "|" + mediaType
}

// reviewsByKey 把用户全部评分整理为联查索引
func reviewsByKey(reviews []*model.Review) map[string]*model.Review {
	m := make(map[string]*model.Review, len(reviews))
	for _, r := range reviews {
		m[reviewKey(r.ContentID, r.MediaType)] = r
	}
	return m
}

// GetLibrary 获取自己的片单，按分类分组并填充评分
func (s *LibraryService) GetLibrary(userID uint) (map[string][]model.ContentRef, error) {
	return s.libraryOf(userID)
}

// GetPartnerLibrary 获取伴侣的片单（填充伴侣的评分）
func (s *LibraryService) GetPartnerLibrary(userID uint) (map[string][]model.ContentRef, error) {
	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.HasPartner() {
		return nil, ErrNotPartnered
	}
	return s.libraryOf(*user.PartnerID)
}

func (s *LibraryService) libraryOf(userID uint) (map[string][]model.ContentRef, error) {
	entries, err := s.stores.Library().Entries(userID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.stores.Reviews().ByUser(userID)
	if err != nil {
		return nil, err
	}
	index := reviewsByKey(reviews)

	library := make(map[string][]model.ContentRef, len(model.Categories))
	for _, category := range model.Categories {
		library[category] = []model.ContentRef{}
	}
	for _, e := range entries {
		ref := e.ToContentRef()
		if r, ok := index[reviewKey(e.ContentID, e.MediaType)]; ok {
			ref.UserRating = r.Rating
			ref.UserComment = r.Comment
		}
		library[e.Category] = append(library[e.Category], ref)
	}
	return library, nil
}

// SharedView 共享片单视图
type SharedView struct {
	Favorites     []model.ContentRef         `json:"favorites"`
	Watchlist     []model.ContentRef         `json:"watchlist"`
	Watched       []model.ContentRef         `json:"watched"`
	Compatibility []model.CompatibilityScore `json:"compatibility"`
}

// GetSharedLibrary 获取共享片单，watched条目填充双方评分
// 共享片单不存在时惰性创建（正常在接受邀请时已建）
func (s *LibraryService) GetSharedLibrary(userID uint) (*SharedView, error) {
	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.HasPartner() {
		return nil, ErrNotPartnered
	}
	partnerID := *user.PartnerID

	low, high := model.PairKey(userID, partnerID)
	shared, err := s.stores.Shared().GetByPair(low, high)
	if err != nil {
		return nil, err
	}
	if shared == nil {
		shared = &model.SharedLibrary{UserLowID: low, UserHighID: high}
		if err := s.stores.Shared().Create(shared); err != nil {
			return nil, err
		}
	}

	entries, err := s.stores.Shared().Entries(shared.ID)
	if err != nil {
		return nil, err
	}
	myReviews, err := s.stores.Reviews().ByUser(userID)
	if err != nil {
		return nil, err
	}
	partnerReviews, err := s.stores.Reviews().ByUser(partnerID)
	if err != nil {
		return nil, err
	}
	mine := reviewsByKey(myReviews)
	theirs := reviewsByKey(partnerReviews)

	view := &SharedView{
		Favorites:     []model.ContentRef{},
		Watchlist:     []model.ContentRef{},
		Watched:       []model.ContentRef{},
		Compatibility: []model.CompatibilityScore{},
	}
	for _, e := range entries {
		ref := e.ToContentRef()
		key := reviewKey(e.ContentID, e.MediaType)
		if r, ok := mine[key]; ok {
			ref.UserRating = r.Rating
			ref.UserComment = r.Comment
		}
		if r, ok := theirs[key]; ok {
			ref.PartnerRating = r.Rating
			ref.PartnerComment = r.Comment
		}
		switch e.List {
		case model.SharedListFavorites:
			view.Favorites = append(view.Favorites, ref)
		case model.SharedListWatchlist:
			view.Watchlist = append(view.Watchlist, ref)
		case model.SharedListWatched:
			view.Watched = append(view.Watched, ref)
		}
	}

	compat, err := s.stores.Shared().Compatibility(shared.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range compat {
		view.Compatibility = append(view.Compatibility, model.CompatibilityScore{
			Movie: c.ToContentRef(),
			Score: c.Score,
		})
	}
	return view, nil
}

// AddToCategory 向指定分类添加内容
// 校验顺序与失败语义见 validateAdd；watchedTogether 分类会同步写入共享片单
func (s *LibraryService) AddToCategory(userID uint, category string, in *ContentInput) error {
	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := validateAdd(s.stores.Library(), userID, category, in.ID, user.HasPartner()); err != nil {
		return err
	}

	entry := &model.LibraryEntry{
		UserID:      userID,
		Category:    category,
		ContentID:   in.ID,
		MediaType:   in.mediaType(),
		Title:       in.Title,
		PosterPath:  in.PosterPath,
		ReleaseDate: in.ReleaseDate,
		VoteAverage: in.VoteAverage,
		GenreIDs:    model.JoinGenreIDs(in.GenreIDs),
	}
	if category == model.CategoryWatched {
		now := time.Now()
		entry.WatchedDate = &now
	}

	if category == model.CategoryWatchedTogether {
		if err := s.addWatchedTogether(userID, *user.PartnerID, entry, in); err != nil {
			return err
		}
	} else {
		if err := s.stores.Library().Add(entry); err != nil {
			return err
		}
	}

	// 自己的操作记录为已读通知，不计入未读数
	_ = s.stores.Notifications().Append(&model.Notification{
		UserID:  userID,
		Type:    model.NotificationLibraryUpdate,
		Message: fmt.Sprintf("已将《%s》添加到 %s", in.Title, category),
		Read:    true,
	})

	if s.notifier != nil {
		s.notifier.Emit(userID, websocket.EventLibraryUpdate, in.ID)
	}
	return nil
}

// addWatchedTogether 共同观看分类写入：同时维护自己watched标记与共享watched列表
func (s *LibraryService) addWatchedTogether(userID, partnerID uint, entry *model.LibraryEntry, in *ContentInput) error {
	err := s.stores.InTx(func(tx ports.Stores) error {
		if err := tx.Library().Add(entry); err != nil {
			return err
		}
		if err := tx.Library().SetTogetherFlag(userID, in.ID, true); err != nil {
			return err
		}

		low, high := model.PairKey(userID, partnerID)
		shared, err := tx.Shared().GetByPair(low, high)
		if err != nil {
			return err
		}
		if shared == nil {
			shared = &model.SharedLibrary{UserLowID: low, UserHighID: high}
			if err := tx.Shared().Create(shared); err != nil {
				return err
			}
		}
		return tx.Shared().AddEntry(&model.SharedEntry{
			SharedLibraryID: shared.ID,
			List:            model.SharedListWatched,
			ContentID:       in.ID,
			MediaType:       in.mediaType(),
			Title:           in.Title,
			PosterPath:      in.PosterPath,
			ReleaseDate:     in.ReleaseDate,
			VoteAverage:     in.VoteAverage,
		})
	})
	if err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Emit(partnerID, websocket.EventSharedLibraryUpdate, in.ID)
		s.notifier.Emit(userID, websocket.EventSharedLibraryUpdate, in.ID)
	}
	return nil
}

// RemoveFromCategory 从指定分类移除内容
// 移出watched或watchedTogether时视为"取消观看"，级联清理派生分类并删除对应评分
func (s *LibraryService) RemoveFromCategory(userID uint, category, contentID string) error {
	if !model.IsValidCategory(category) {
		return Validationf("无效的片单分类: " + category)
	}

	if category == model.CategoryWatched || category == model.CategoryWatchedTogether {
		return s.removeWatched(userID, contentID)
	}

	rows, err := s.stores.Library().Remove(userID, category, contentID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	if s.notifier != nil {
		s.notifier.Emit(userID, websocket.EventLibraryUpdate, contentID)
	}
	return nil
}

// removeWatched 取消观看的级联流程，整体在一个事务内：
// 自己的watched/watchedTogether/favorites/disliked/liked与评分全部清理；
// 有伴侣时同步清理共享片单的watched与favorites列表，
// 且当伴侣侧为共同观看记录时，一并移除伴侣的watched/watchedTogether（伴侣评分保留）
func (s *LibraryService) removeWatched(userID uint, contentID string) error {
	exists, err := s.stores.Library().Has(userID, model.CategoryWatched, contentID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	var partnerID uint
	partnerTogether := false
	if user.HasPartner() {
		partnerID = *user.PartnerID
		partnerTogether, err = s.stores.Library().Has(partnerID, model.CategoryWatchedTogether, contentID)
		if err != nil {
			return err
		}
	}

	err = s.stores.InTx(func(tx ports.Stores) error {
		if err := tx.Library().RemoveFromCategories(userID, contentID, watchedCascadeCategories); err != nil {
			return err
		}
		if err := tx.Reviews().DeleteByContent(userID, contentID); err != nil {
			return err
		}

		if user.HasPartner() {
			low, high := model.PairKey(userID, partnerID)
			shared, err := tx.Shared().GetByPair(low, high)
			if err != nil {
				return err
			}
			if shared != nil {
				lists := []string{model.SharedListWatched, model.SharedListFavorites}
				if err := tx.Shared().RemoveContent(shared.ID, contentID, lists); err != nil {
					return err
				}
			}
			if partnerTogether {
				together := []string{model.CategoryWatched, model.CategoryWatchedTogether}
				if err := tx.Library().RemoveFromCategories(partnerID, contentID, together); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Emit(userID, websocket.EventLibraryUpdate, contentID)
		if user.HasPartner() {
			s.notifier.Emit(partnerID, websocket.EventLibraryUpdate, contentID)
			s.notifier.Emit(userID, websocket.EventSharedLibraryUpdate, contentID)
			s.notifier.Emit(partnerID, websocket.EventSharedLibraryUpdate, contentID)
		}
	}
	return nil
}

// 观看标记模式
const (
	WatchedModeUser     = "user"
	WatchedModeTogether = "together"
	WatchedModeRemove   = "remove"
)

// MarkWatched 标记观看状态
// user: 仅自己观看；together: 双方共同观看（需要伴侣，双方片单与共享片单同步更新）；
// remove: 取消观看标记（级联清理）
func (s *LibraryService) MarkWatched(userID uint, mode string, in *ContentInput) (*WatchedStatus, error) {
	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	switch mode {
	case WatchedModeUser:
		if err := s.markWatchedUser(userID, in); err != nil {
			return nil, err
		}
	case WatchedModeTogether:
		if !user.HasPartner() {
			return nil, ErrNotPartnered
		}
		if err := s.markWatchedTogether(userID, *user.PartnerID, in); err != nil {
			return nil, err
		}
	case WatchedModeRemove:
		if err := s.removeWatched(userID, in.ID); err != nil {
			return nil, err
		}
	default:
		return nil, Validationf("无效的观看模式: " + mode)
	}

	return s.watchedStatus(user, in.ID)
}

// markWatchedUser 标记为自己已观看，同时移出待看列表
func (s *LibraryService) markWatchedUser(userID uint, in *ContentInput) error {
	exists, err := s.stores.Library().Has(userID, model.CategoryWatched, in.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}

	now := time.Now()
	return s.stores.InTx(func(tx ports.Stores) error {
		if err := tx.Library().Add(&model.LibraryEntry{
			UserID:      userID,
			Category:    model.CategoryWatched,
			ContentID:   in.ID,
			MediaType:   in.mediaType(),
			Title:       in.Title,
			PosterPath:  in.PosterPath,
			ReleaseDate: in.ReleaseDate,
			VoteAverage: in.VoteAverage,
			GenreIDs:    model.JoinGenreIDs(in.GenreIDs),
			WatchedDate: &now,
		}); err != nil {
			return err
		}
		// watched 与 watchlist 互斥
		if _, err := tx.Library().Remove(userID, model.CategoryWatchlist, in.ID); err != nil {
			return err
		}
		if s.notifier != nil {
			s.notifier.Emit(userID, websocket.EventLibraryUpdate, in.ID)
		}
		return nil
	})
}

// markWatchedTogether 双方共同观看：两侧watched记录、共享watched列表在一个事务内落库
// 与user模式一致，发起方已观看时冲突；伴侣已观看时仅补打共同观看标记
func (s *LibraryService) markWatchedTogether(userID, partnerID uint, in *ContentInput) error {
	exists, err := s.stores.Library().Has(userID, model.CategoryWatched, in.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}

	now := time.Now()
	err = s.stores.InTx(func(tx ports.Stores) error {
		for _, id := range []uint{userID, partnerID} {
			watched, err := tx.Library().Has(id, model.CategoryWatched, in.ID)
			if err != nil {
				return err
			}
			if !watched {
				if err := tx.Library().Add(&model.LibraryEntry{
					UserID:          id,
					Category:        model.CategoryWatched,
					ContentID:       in.ID,
					MediaType:       in.mediaType(),
					Title:           in.Title,
					PosterPath:      in.PosterPath,
					ReleaseDate:     in.ReleaseDate,
					VoteAverage:     in.VoteAverage,
					GenreIDs:        model.JoinGenreIDs(in.GenreIDs),
					WatchedDate:     &now,
					WatchedTogether: true,
				}); err != nil {
					return err
				}
			} else {
				if err := tx.Library().SetTogetherFlag(id, in.ID, true); err != nil {
					return err
				}
			}
			if _, err := tx.Library().Remove(id, model.CategoryWatchlist, in.ID); err != nil {
				return err
			}

			inTogether, err := tx.Library().Has(id, model.CategoryWatchedTogether, in.ID)
			if err != nil {
				return err
			}
			if !inTogether {
				if err := tx.Library().Add(&model.LibraryEntry{
					UserID:          id,
					Category:        model.CategoryWatchedTogether,
					ContentID:       in.ID,
					MediaType:       in.mediaType(),
					Title:           in.Title,
					PosterPath:      in.PosterPath,
					ReleaseDate:     in.ReleaseDate,
					VoteAverage:     in.VoteAverage,
					GenreIDs:        model.JoinGenreIDs(in.GenreIDs),
					WatchedDate:     &now,
					WatchedTogether: true,
				}); err != nil {
					return err
				}
			}
		}

		low, high := model.PairKey(userID, partnerID)
		shared, err := tx.Shared().GetByPair(low, high)
		if err != nil {
			return err
		}
		if shared == nil {
			shared = &model.SharedLibrary{UserLowID: low, UserHighID: high}
			if err := tx.Shared().Create(shared); err != nil {
				return err
			}
		}
		entries, err := tx.Shared().Entries(shared.ID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.List == model.SharedListWatched && e.ContentID == in.ID {
				return nil // 已在共享列表中
			}
		}
		return tx.Shared().AddEntry(&model.SharedEntry{
			SharedLibraryID: shared.ID,
			List:            model.SharedListWatched,
			ContentID:       in.ID,
			MediaType:       in.mediaType(),
			Title:           in.Title,
			PosterPath:      in.PosterPath,
			ReleaseDate:     in.ReleaseDate,
			VoteAverage:     in.VoteAverage,
		})
	})
	if err != nil {
		return err
	}

	if err := pushNotification(s.stores, s.notifier, &model.Notification{
		UserID:  partnerID,
		FromID:  &userID,
		Type:    model.NotificationLibraryUpdate,
		Message: fmt.Sprintf("你们共同观看了《%s》", in.Title),
	}); err != nil {
		return err
	}

	if s.notifier != nil {
		for _, id := range []uint{userID, partnerID} {
			s.notifier.Emit(id, websocket.EventLibraryUpdate, in.ID)
			s.notifier.Emit(id, websocket.EventSharedLibraryUpdate, in.ID)
		}
	}
	return nil
}

// watchedStatus 汇总自己/伴侣/共同的观看状态
func (s *LibraryService) watchedStatus(user *model.User, contentID string) (*WatchedStatus, error) {
	status := &WatchedStatus{}
	var err error
	status.User, err = s.stores.Library().Has(user.ID, model.CategoryWatched, contentID)
	if err != nil {
		return nil, err
	}
	status.Together, err = s.stores.Library().Has(user.ID, model.CategoryWatchedTogether, contentID)
	if err != nil {
		return nil, err
	}
	if user.HasPartner() {
		status.Partner, err = s.stores.Library().Has(*user.PartnerID, model.CategoryWatched, contentID)
		if err != nil {
			return nil, err
		}
	}
	return status, nil
}
