package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"srmdb/internal/model"
	"srmdb/internal/ports"
	"srmdb/pkg/tmdb"
)

// 内存版仓储实现，覆盖 ports.Stores 的全部接口
// 单条查询在记录不存在时返回 (nil, nil)，与真实仓储保持一致

type memStores struct {
	users         []*model.User
	entries       []*model.LibraryEntry
	reviews       []*model.Review
	sharedLibs    []*model.SharedLibrary
	sharedEntries []*model.SharedEntry
	compat        []*model.CompatibilityEntry
	archives      []*model.Archive
	notifications []*model.Notification
	nextID        uint
}

func newMemStores() *memStores {
	return &memStores{nextID: 1}
}

func (m *memStores) id() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStores) Users() ports.UserStore                 { return (*memUsers)(m) }
func (m *memStores) Library() ports.LibraryStore            { return (*memLibrary)(m) }
func (m *memStores) Reviews() ports.ReviewStore             { return (*memReviews)(m) }
func (m *memStores) Shared() ports.SharedStore              { return (*memShared)(m) }
func (m *memStores) Archives() ports.ArchiveStore           { return (*memArchives)(m) }
func (m *memStores) Notifications() ports.NotificationStore { return (*memNotifications)(m) }

func (m *memStores) InTx(fn func(tx ports.Stores) error) error {
	return fn(m)
}

type memUsers memStores

func (m *memUsers) Create(user *model.User) error {
	user.ID = (*memStores)(m).id()
	m.users = append(m.users, user)
	return nil
}

func (m *memUsers) Save(user *model.User) error {
	for i, u := range m.users {
		if u.ID == user.ID {
			m.users[i] = user
			return nil
		}
	}
	m.users = append(m.users, user)
	return nil
}

func (m *memUsers) GetByID(id uint) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByUsername(username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByEmail(email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memUsers) UsernameTaken(username string, excludeID uint) (bool, error) {
	for _, u := range m.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) EmailTaken(email string, excludeID uint) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Search(query string, excludeID uint) ([]*model.User, error) {
	var result []*model.User
	for _, u := range m.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(u.Username, query) || strings.Contains(u.Name, query) {
			clone := *u
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *memUsers) SetPartner(userID uint, partnerID *uint) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.PartnerID = partnerID
			return nil
		}
	}
	return nil
}

type memLibrary memStores

func (m *memLibrary) Entries(userID uint) ([]*model.LibraryEntry, error) {
	var result []*model.LibraryEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			clone := *e
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *memLibrary) CategoryEntries(userID uint, category string) ([]*model.LibraryEntry, error) {
	var result []*model.LibraryEntry
	for _, e := range m.entries {
		if e.UserID == userID && e.Category == category {
			clone := *e
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *memLibrary) Has(userID uint, category, contentID string) (bool, error) {
	for _, e := range m.entries {
		if e.UserID == userID && e.Category == category && e.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLibrary) Add(entry *model.LibraryEntry) error {
	entry.ID = (*memStores)(m).id()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memLibrary) Remove(userID uint, category, contentID string) (int64, error) {
	var kept []*model.LibraryEntry
	var removed int64
	for _, e := range m.entries {
		if e.UserID == userID && e.Category == category && e.ContentID == contentID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

func (m *memLibrary) RemoveFromCategories(userID uint, contentID string, categories []string) error {
	inSet := make(map[string]bool, len(categories))
	for _, c := range categories {
		inSet[c] = true
	}
	var kept []*model.LibraryEntry
	for _, e := range m.entries {
		if e.UserID == userID && e.ContentID == contentID && inSet[e.Category] {
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return nil
}

func (m *memLibrary) ClearTogetherFlags(userID uint) error {
	for _, e := range m.entries {
		if e.UserID == userID && e.Category == model.CategoryWatched {
			e.WatchedTogether = false
		}
	}
	return nil
}

func (m *memLibrary) StripTogetherEntries(userID uint) error {
	var kept []*model.LibraryEntry
	for _, e := range m.entries {
		if e.UserID == userID && e.Category == model.CategoryWatched && e.WatchedTogether {
			continue
		}
		if e.UserID == userID && e.Category == model.CategoryWatchedTogether {
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return nil
}

func (m *memLibrary) SetTogetherFlag(userID uint, contentID string, together bool) error {
	for _, e := range m.entries {
		if e.UserID == userID && e.Category == model.CategoryWatched && e.ContentID == contentID {
			e.WatchedTogether = together
		}
	}
	return nil
}

func (m *memLibrary) TagWatchedTogether(userID uint, contentIDs []string) error {
	inSet := make(map[string]bool, len(contentIDs))
	for _, id := range contentIDs {
		inSet[id] = true
	}
	for _, e := range m.entries {
		if e.UserID == userID && e.Category == model.CategoryWatched && inSet[e.ContentID] {
			e.WatchedTogether = true
		}
	}
	return nil
}

type memReviews memStores

func (m *memReviews) Get(userID uint, contentID, mediaType string) (*model.Review, error) {
	for _, r := range m.reviews {
		if r.UserID == userID && r.ContentID == contentID && r.MediaType == mediaType {
			clone := *r
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memReviews) ByUser(userID uint) ([]*model.Review, error) {
	var result []*model.Review
	for _, r := range m.reviews {
		if r.UserID == userID {
			clone := *r
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *memReviews) Upsert(review *model.Review) error {
	for _, r := range m.reviews {
		if r.UserID == review.UserID && r.ContentID == review.ContentID && r.MediaType == review.MediaType {
			r.Rating = review.Rating
			r.Comment = review.Comment
			return nil
		}
	}
	review.ID = (*memStores)(m).id()
	m.reviews = append(m.reviews, review)
	return nil
}

func (m *memReviews) DeleteByContent(userID uint, contentID string) error {
	var kept []*model.Review
	for _, r := range m.reviews {
		if r.UserID == userID && r.ContentID == contentID {
			continue
		}
		kept = append(kept, r)
	}
	m.reviews = kept
	return nil
}

type memShared memStores

func (m *memShared) GetByPair(lowID, highID uint) (*model.SharedLibrary, error) {
	for _, lib := range m.sharedLibs {
		if lib.UserLowID == lowID && lib.UserHighID == highID {
			clone := *lib
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memShared) Create(lib *model.SharedLibrary) error {
	lib.ID = (*memStores)(m).id()
	m.sharedLibs = append(m.sharedLibs, lib)
	return nil
}

func (m *memShared) Delete(id uint) error {
	var keptLibs []*model.SharedLibrary
	for _, lib := range m.sharedLibs {
		if lib.ID != id {
			keptLibs = append(keptLibs, lib)
		}
	}
	m.sharedLibs = keptLibs

	var keptEntries []*model.SharedEntry
	for _, e := range m.sharedEntries {
		if e.SharedLibraryID != id {
			keptEntries = append(keptEntries, e)
		}
	}
	m.sharedEntries = keptEntries

	var keptCompat []*model.CompatibilityEntry
	for _, c := range m.compat {
		if c.SharedLibraryID != id {
			keptCompat = append(keptCompat, c)
		}
	}
	m.compat = keptCompat
	return nil
}

func (m *memShared) Entries(sharedID uint) ([]*model.SharedEntry, error) {
	var result []*model.SharedEntry
	for _, e := range m.sharedEntries {
		if e.SharedLibraryID == sharedID {
			clone := *e
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *memShared) AddEntry(entry *model.SharedEntry) error {
	entry.ID = (*memStores)(m).id()
	m.sharedEntries = append(m.sharedEntries, entry)
	return nil
}

func (m *memShared) RemoveContent(sharedID uint, contentID string, lists []string) error {
	inSet := make(map[string]bool, len(lists))
	for _, l := range lists {
		inSet[l] = true
	}
	var kept []*model.SharedEntry
	for _, e := range m.sharedEntries {
		if e.SharedLibraryID == sharedID && e.ContentID == contentID && inSet[e.List] {
			continue
		}
		kept = append(kept, e)
	}
	m.sharedEntries = kept
	return nil
}

func (m *memShared) ReplaceEntries(sharedID uint, entries []*model.SharedEntry) error {
	var kept []*model.SharedEntry
	for _, e := range m.sharedEntries {
		if e.SharedLibraryID != sharedID {
			kept = append(kept, e)
		}
	}
	for _, e := range entries {
		e.ID = (*memStores)(m).id()
		e.SharedLibraryID = sharedID
		kept = append(kept, e)
	}
	m.sharedEntries = kept
	return nil
}

func (m *memShared) Compatibility(sharedID uint) ([]*model.CompatibilityEntry, error) {
	var result []*model.CompatibilityEntry
	for _, c := range m.compat {
		if c.SharedLibraryID == sharedID {
			clone := *c
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	return result, nil
}

func (m *memShared) ReplaceCompatibility(sharedID uint, entries []*model.CompatibilityEntry) error {
	var kept []*model.CompatibilityEntry
	for _, c := range m.compat {
		if c.SharedLibraryID != sharedID {
			kept = append(kept, c)
		}
	}
	for _, c := range entries {
		c.ID = (*memStores)(m).id()
		c.SharedLibraryID = sharedID
		kept = append(kept, c)
	}
	m.compat = kept
	return nil
}

type memArchives memStores

func (m *memArchives) GetByPair(lowID, highID uint) (*model.Archive, error) {
	for _, a := range m.archives {
		if a.UserLowID == lowID && a.UserHighID == highID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memArchives) Save(archive *model.Archive) error {
	for _, a := range m.archives {
		if a.UserLowID == archive.UserLowID && a.UserHighID == archive.UserHighID {
			a.Snapshot = archive.Snapshot
			a.ArchivedAt = archive.ArchivedAt
			return nil
		}
	}
	archive.ID = (*memStores)(m).id()
	m.archives = append(m.archives, archive)
	return nil
}

type memNotifications memStores

func (m *memNotifications) ByUser(userID uint) ([]*model.Notification, error) {
	var result []*model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			clone := *n
			result = append(result, &clone)
		}
	}
	// 最新的在前
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *memNotifications) GetByID(userID, id uint) (*model.Notification, error) {
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			clone := *n
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memNotifications) Append(n *model.Notification) error {
	n.ID = (*memStores)(m).id()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memNotifications) Save(n *model.Notification) error {
	for i, existing := range m.notifications {
		if existing.ID == n.ID {
			clone := *n
			m.notifications[i] = &clone
			return nil
		}
	}
	return nil
}

func (m *memNotifications) PendingInviteExists(userID, fromID uint) (bool, error) {
	for _, n := range m.notifications {
		if n.UserID == userID && n.FromID != nil && *n.FromID == fromID && n.IsPendingInvite() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotifications) UnreadCount(userID uint) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// recordNotifier 记录推送事件的Notifier实现
type recordNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	UserID   uint
	Event    string
	Resource string
}

func (r *recordNotifier) Emit(userID uint, event, resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{UserID: userID, Event: event, Resource: resource})
}

func (r *recordNotifier) received(userID uint, event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.UserID == userID && e.Event == event {
			return true
		}
	}
	return false
}

// fakeCatalog 固定返回预设结果的目录实现
type fakeCatalog struct {
	popular tmdb.Page
	similar map[int]tmdb.Page
}

func (f *fakeCatalog) Popular(ctx context.Context, mediaType string, page int) (*tmdb.Page, error) {
	result := f.popular
	return &result, nil
}

func (f *fakeCatalog) Similar(ctx context.Context, movieID int) (*tmdb.Page, error) {
	result := f.similar[movieID]
	return &result, nil
}
