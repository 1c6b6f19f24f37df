package service

import (
	"fmt"

	"srmdb/internal/model"
	"srmdb/internal/ports"
	"srmdb/pkg/websocket"
)

// ReviewView 评分视图，未评分时rating为0
type ReviewView struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewResult 评分读写结果：自己与伴侣的评分并列返回
type ReviewResult struct {
	UserReview    ReviewView     `json:"userReview"`
	PartnerReview ReviewView     `json:"partnerReview"`
	WatchedStatus *WatchedStatus `json:"watchedStatus,omitempty"`
}

// ReviewService 评分服务
// 仅允许对已观看内容评分；评分数据不冗余到片单条目，读取时联查
type ReviewService struct {
	stores   ports.Stores
	library  *LibraryService
	notifier ports.Notifier
}

func NewReviewService(stores ports.Stores, library *LibraryService, notifier ports.Notifier) *ReviewService {
	return &ReviewService{stores: stores, library: library, notifier: notifier}
}

// Save 保存评分（同一内容重复保存时覆盖）
func (s *ReviewService) Save(userID uint, contentID, mediaType string, rating int, comment string) (*ReviewResult, error) {
	if contentID == "" {
		return nil, Validationf("内容ID不能为空")
	}
	if rating < 1 || rating > 5 {
		return nil, Validationf("评分必须在1到5之间")
	}
	if !model.IsValidMediaType(mediaType) {
		mediaType = model.MediaTypeMovie
	}

	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	watched, err := s.stores.Library().Has(userID, model.CategoryWatched, contentID)
	if err != nil {
		return nil, err
	}
	if !watched {
		return nil, ErrNotWatched
	}

	if err := s.stores.Reviews().Upsert(&model.Review{
		UserID:    userID,
		ContentID: contentID,
		MediaType: mediaType,
		Rating:    rating,
		Comment:   comment,
	}); err != nil {
		return nil, err
	}

	if user.HasPartner() {
		if err := pushNotification(s.stores, s.notifier, &model.Notification{
			UserID:  *user.PartnerID,
			FromID:  &userID,
			Type:    model.NotificationLibraryUpdate,
			Message: fmt.Sprintf("%s 给一部作品打了 %d 分", user.Name, rating),
		}); err != nil {
			return nil, err
		}
	}
	if s.notifier != nil {
		s.notifier.Emit(userID, websocket.EventLibraryUpdate, contentID)
	}

	return s.result(user, contentID, mediaType, false)
}

// Get 查询自己与伴侣对某内容的评分及观看状态
func (s *ReviewService) Get(userID uint, contentID, mediaType string) (*ReviewResult, error) {
	if !model.IsValidMediaType(mediaType) {
		mediaType = model.MediaTypeMovie
	}
	user, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.result(user, contentID, mediaType, true)
}

func (s *ReviewService) result(user *model.User, contentID, mediaType string, withStatus bool) (*ReviewResult, error) {
	result := &ReviewResult{}

	if r, err := s.stores.Reviews().Get(user.ID, contentID, mediaType); err != nil {
		return nil, err
	} else if r != nil {
		result.UserReview = ReviewView{Rating: r.Rating, Comment: r.Comment}
	}

	if user.HasPartner() {
		if r, err := s.stores.Reviews().Get(*user.PartnerID, contentID, mediaType); err != nil {
			return nil, err
		} else if r != nil {
			result.PartnerReview = ReviewView{Rating: r.Rating, Comment: r.Comment}
		}
	}

	if withStatus {
		status, err := s.library.watchedStatus(user, contentID)
		if err != nil {
			return nil, err
		}
		result.WatchedStatus = status
	}
	return result, nil
}
