package service

import (
	"fmt"
	"time"

	"srmdb/internal/model"
	"srmdb/internal/ports"
	"srmdb/pkg/websocket"
)

// PartnerService 伴侣关系服务
// 状态机：无伴侣 -> 发出邀请(pending) -> 接受(双向绑定)/拒绝(可重新邀请) -> 解绑(归档可选)
// 涉及双方账号的变更全部在单个事务内完成，保证 A.PartnerID 与 B.PartnerID 始终对称
type PartnerService struct {
	stores   ports.Stores
	notifier ports.Notifier
}

func NewPartnerService(stores ports.Stores, notifier ports.Notifier) *PartnerService {
	return &PartnerService{stores: stores, notifier: notifier}
}

// Request 向目标账号发出伴侣邀请
func (s *PartnerService) Request(fromID, toID uint) error {
	if fromID == toID {
		return ErrSelfReference
	}

	from, err := s.stores.Users().GetByID(fromID)
	if err != nil {
		return err
	}
	if from == nil {
		return ErrNotFound
	}
	if from.HasPartner() {
		return ErrAlreadyPartnered
	}

	to, err := s.stores.Users().GetByID(toID)
	if err != nil {
		return err
	}
	if to == nil {
		return ErrNotFound
	}
	if to.HasPartner() {
		return ErrAlreadyPartnered
	}

	// 已有未决邀请时不重复发送；被拒绝后允许再次邀请
	pending, err := s.stores.Notifications().PendingInviteExists(toID, fromID)
	if err != nil {
		return err
	}
	if pending {
		return ErrDuplicateInvite
	}

	return pushNotification(s.stores, s.notifier, &model.Notification{
		UserID:  toID,
		FromID:  &fromID,
		Type:    model.NotificationPartnerRequest,
		Status:  model.InviteStatusPending,
		Message: fmt.Sprintf("%s 向你发出了伴侣邀请", from.Name),
	})
}

// AcceptResult 接受邀请的结果
type AcceptResult struct {
	Partner *model.User
	// PreviousPartner 双方此前绑定过且留有归档，本次已自动恢复共享片单
	PreviousPartner bool
}

// Accept 接受伴侣邀请：双向绑定、创建共享片单，存在归档时恢复
func (s *PartnerService) Accept(userID, notificationID uint) (*AcceptResult, error) {
	invite, err := s.stores.Notifications().GetByID(userID, notificationID)
	if err != nil {
		return nil, err
	}
	if invite == nil || !invite.IsPendingInvite() || invite.FromID == nil {
		return nil, ErrInvalidInvite
	}
	fromID := *invite.FromID

	var result AcceptResult
	err = s.stores.InTx(func(tx ports.Stores) error {
		me, err := tx.Users().GetByID(userID)
		if err != nil {
			return err
		}
		from, err := tx.Users().GetByID(fromID)
		if err != nil {
			return err
		}
		if me == nil || from == nil {
			return ErrNotFound
		}
		// 事务内复查：任何一方在邀请发出后绑定了别人，则邀请失效
		if me.HasPartner() || from.HasPartner() {
			return ErrAlreadyPartnered
		}

		if err := tx.Users().SetPartner(userID, &fromID); err != nil {
			return err
		}
		if err := tx.Users().SetPartner(fromID, &userID); err != nil {
			return err
		}

		invite.Status = model.InviteStatusAccepted
		invite.Read = true
		if err := tx.Notifications().Save(invite); err != nil {
			return err
		}

		low, high := model.PairKey(userID, fromID)
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

		// 双方此前绑定过：用归档快照恢复共享片单与共同观看标记
		archive, err := tx.Archives().GetByPair(low, high)
		if err != nil {
			return err
		}
		if archive != nil {
			if err := restoreFromArchive(tx, shared, archive, userID, fromID); err != nil {
				return err
			}
			result.PreviousPartner = true
		}

		if err := pushNotification(tx, s.notifier, &model.Notification{
			UserID:  fromID,
			FromID:  &userID,
			Type:    model.NotificationSystem,
			Message: fmt.Sprintf("%s 接受了你的伴侣邀请", me.Name),
		}); err != nil {
			return err
		}

		result.Partner = from
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Emit(userID, websocket.EventPartnerUpdate, "")
		s.notifier.Emit(fromID, websocket.EventPartnerUpdate, "")
		s.notifier.Emit(userID, websocket.EventNotificationUpdate, "")
	}
	return &result, nil
}

// restoreFromArchive 按归档快照重建共享片单内容，并恢复双方watched记录的共同观看标记
// 归档本身保留，允许同一对用户再次解绑/重连
func restoreFromArchive(tx ports.Stores, shared *model.SharedLibrary, archive *model.Archive, a, b uint) error {
	snapshot, err := model.DecodeSnapshot(archive.Snapshot)
	if err != nil {
		return err
	}

	var entries []*model.SharedEntry
	appendList := func(list string, refs []model.ContentRef) {
		for _, ref := range refs {
			entries = append(entries, &model.SharedEntry{
				SharedLibraryID: shared.ID,
				List:            list,
				ContentID:       ref.ID,
				MediaType:       ref.Type,
				Title:           ref.Title,
				PosterPath:      ref.PosterPath,
				ReleaseDate:     ref.ReleaseDate,
				VoteAverage:     ref.VoteAverage,
			})
		}
	}
	appendList(model.SharedListFavorites, snapshot.Favorites)
	appendList(model.SharedListWatchlist, snapshot.Watchlist)
	appendList(model.SharedListWatched, snapshot.Watched)
	if err := tx.Shared().ReplaceEntries(shared.ID, entries); err != nil {
		return err
	}

	var compat []*model.CompatibilityEntry
	for _, c := range snapshot.Compatibility {
		compat = append(compat, &model.CompatibilityEntry{
			SharedLibraryID: shared.ID,
			ContentID:       c.Movie.ID,
			MediaType:       c.Movie.Type,
			Title:           c.Movie.Title,
			PosterPath:      c.Movie.PosterPath,
			ReleaseDate:     c.Movie.ReleaseDate,
			VoteAverage:     c.Movie.VoteAverage,
			Score:           c.Score,
		})
	}
	if err := tx.Shared().ReplaceCompatibility(shared.ID, compat); err != nil {
		return err
	}

	watchedIDs := make([]string, 0, len(snapshot.Watched))
	for _, ref := range snapshot.Watched {
		watchedIDs = append(watchedIDs, ref.ID)
	}
	if err := tx.Library().TagWatchedTogether(a, watchedIDs); err != nil {
		return err
	}
	return tx.Library().TagWatchedTogether(b, watchedIDs)
}

// Reject 拒绝伴侣邀请，发送者之后可再次邀请
func (s *PartnerService) Reject(userID, notificationID uint) error {
	invite, err := s.stores.Notifications().GetByID(userID, notificationID)
	if err != nil {
		return err
	}
	if invite == nil || !invite.IsPendingInvite() || invite.FromID == nil {
		return ErrInvalidInvite
	}

	me, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return err
	}
	if me == nil {
		return ErrNotFound
	}

	invite.Status = model.InviteStatusRejected
	invite.Read = true
	if err := s.stores.Notifications().Save(invite); err != nil {
		return err
	}

	if err := pushNotification(s.stores, s.notifier, &model.Notification{
		UserID:  *invite.FromID,
		FromID:  &userID,
		Type:    model.NotificationSystem,
		Message: fmt.Sprintf("%s 拒绝了你的伴侣邀请", me.Name),
	}); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Emit(userID, websocket.EventNotificationUpdate, "")
	}
	return nil
}

// Unlink 解除伴侣关系
// preserve=true 时先归档共享片单快照（同一对重复解绑会覆盖旧快照），
// 个人watched记录保留但清除共同观看标记；
// preserve=false 时连同共同观看的watched记录一起删除
func (s *PartnerService) Unlink(userID uint, preserve bool) error {
	me, err := s.stores.Users().GetByID(userID)
	if err != nil {
		return err
	}
	if me == nil {
		return ErrNotFound
	}
	if !me.HasPartner() {
		return ErrNotPartnered
	}
	partnerID := *me.PartnerID

	err = s.stores.InTx(func(tx ports.Stores) error {
		low, high := model.PairKey(userID, partnerID)
		shared, err := tx.Shared().GetByPair(low, high)
		if err != nil {
			return err
		}

		if shared != nil {
			if preserve {
				snapshot, err := buildSnapshot(tx, shared.ID)
				if err != nil {
					return err
				}
				raw, err := model.EncodeSnapshot(snapshot)
				if err != nil {
					return err
				}
				if err := tx.Archives().Save(&model.Archive{
					UserLowID:  low,
					UserHighID: high,
					Snapshot:   raw,
					ArchivedAt: time.Now(),
				}); err != nil {
					return err
				}
			}
			if err := tx.Shared().Delete(shared.ID); err != nil {
				return err
			}
		}

		for _, id := range []uint{userID, partnerID} {
			if preserve {
				if err := tx.Library().ClearTogetherFlags(id); err != nil {
					return err
				}
			} else {
				if err := tx.Library().StripTogetherEntries(id); err != nil {
					return err
				}
			}
		}

		if err := tx.Users().SetPartner(userID, nil); err != nil {
			return err
		}
		if err := tx.Users().SetPartner(partnerID, nil); err != nil {
			return err
		}

		return pushNotification(tx, s.notifier, &model.Notification{
			UserID:  partnerID,
			FromID:  &userID,
			Type:    model.NotificationSystem,
			Message: fmt.Sprintf("%s 解除了你们的伴侣关系", me.Name),
		})
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Emit(userID, websocket.EventPartnerUpdate, "")
		s.notifier.Emit(partnerID, websocket.EventPartnerUpdate, "")
	}
	return nil
}

// buildSnapshot 将共享片单当前内容整理为归档快照
func buildSnapshot(tx ports.Stores, sharedID uint) (*model.SharedSnapshot, error) {
	entries, err := tx.Shared().Entries(sharedID)
	if err != nil {
		return nil, err
	}
	snapshot := &model.SharedSnapshot{
		Favorites:     []model.ContentRef{},
		Watchlist:     []model.ContentRef{},
		Watched:       []model.ContentRef{},
		Compatibility: []model.CompatibilityScore{},
	}
	for _, e := range entries {
		ref := e.ToContentRef()
		switch e.List {
		case model.SharedListFavorites:
			snapshot.Favorites = append(snapshot.Favorites, ref)
		case model.SharedListWatchlist:
			snapshot.Watchlist = append(snapshot.Watchlist, ref)
		case model.SharedListWatched:
			snapshot.Watched = append(snapshot.Watched, ref)
		}
	}

	compat, err := tx.Shared().Compatibility(sharedID)
	if err != nil {
		return nil, err
	}
	for _, c := range compat {
		snapshot.Compatibility = append(snapshot.Compatibility, model.CompatibilityScore{
			Movie: c.ToContentRef(),
			Score: c.Score,
		})
	}
	return snapshot, nil
}
