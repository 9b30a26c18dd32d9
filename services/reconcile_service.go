package services

import (
	"context"
	"log"
	"math"
	"sync"

	"poi-server/models"
)

// coordTolerance absorbs floating-point drift between independently-sourced
// coordinate strings when matching POIs against stored bookmarks.
const coordTolerance = 1e-5

// BookmarkStore is the slice of the bookmark service the reconciler needs.
type BookmarkStore interface {
	List(ctx context.Context, userID string) ([]models.Bookmark, error)
	Add(ctx context.Context, bookmark models.Bookmark) (string, error)
	Remove(ctx context.Context, id string) error
}

// bookmarkIndex holds the two parallel lookup structures for one user: the
// set of bookmarked coordinate keys and the key-to-id map used for removal.
type bookmarkIndex struct {
	keys map[string]struct{}
	ids  map[string]string
}

func newBookmarkIndex() *bookmarkIndex {
	return &bookmarkIndex{
		keys: make(map[string]struct{}),
		ids:  make(map[string]string),
	}
}

// ReconcilerService matches canonical POIs against each user's stored
// bookmarks and keeps the coordinate index consistent under interleaved
// add/remove operations. Index updates are optimistic: they apply as soon as
// the store call succeeds, and a full resync corrects any drift afterwards.
type ReconcilerService struct {
	store BookmarkStore

	mu      sync.RWMutex
	indexes map[string]*bookmarkIndex // by user id
}

func NewReconcilerService(store BookmarkStore) *ReconcilerService {
	return &ReconcilerService{
		store:   store,
		indexes: make(map[string]*bookmarkIndex),
	}
}

func (s *ReconcilerService) index(userID string) *bookmarkIndex {
	idx, ok := s.indexes[userID]
	if !ok {
		idx = newBookmarkIndex()
		s.indexes[userID] = idx
	}
	return idx
}

// Add writes the bookmark to the store, then optimistically inserts its
// coordinate key into both structures. A resync runs afterwards to replace
// the optimistic entry with the store-confirmed one.
func (s *ReconcilerService) Add(ctx context.Context, bookmark models.Bookmark) (string, error) {
	id, err := s.store.Add(ctx, bookmark)
	if err != nil {
		return "", err
	}

	key := models.CoordKey(bookmark.Latitude, bookmark.Longitude)
	s.mu.Lock()
	idx := s.index(bookmark.UserID)
	idx.keys[key] = struct{}{}
	idx.ids[key] = id
	s.mu.Unlock()

	if err := s.Resync(ctx, bookmark.UserID); err != nil {
		log.Printf("Bookmark resync after add failed for user %s: %v", bookmark.UserID, err)
	}
	return id, nil
}

// Remove deletes the bookmark from the store, then locates the coordinate
// key whose stored id matches (removal is keyed by id, display by
// coordinate) and optimistically deletes it from both structures.
func (s *ReconcilerService) Remove(ctx context.Context, userID, bookmarkID string) error {
	if err := s.store.Remove(ctx, bookmarkID); err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.index(userID)
	for key, id := range idx.ids {
		if id == bookmarkID {
			delete(idx.keys, key)
			delete(idx.ids, key)
			break
		}
	}
	s.mu.Unlock()

	if err := s.Resync(ctx, userID); err != nil {
		log.Printf("Bookmark resync after remove failed for user %s: %v", userID, err)
	}
	return nil
}

// Resync rebuilds the user's index from the store, discarding optimistic
// entries the store never confirmed.
func (s *ReconcilerService) Resync(ctx context.Context, userID string) error {
	bookmarks, err := s.store.List(ctx, userID)
	if err != nil {
		return err
	}

	idx := newBookmarkIndex()
	for _, b := range bookmarks {
		key := models.CoordKey(b.Latitude, b.Longitude)
		idx.keys[key] = struct{}{}
		idx.ids[key] = b.ID
	}

	s.mu.Lock()
	s.indexes[userID] = idx
	s.mu.Unlock()
	return nil
}

// Reconcile refreshes the index from the store and annotates each POI with
// its bookmarked state. POIs match bookmarks by coordinate proximity within
// the tolerance; the index itself is keyed by the POI's coordinate string so
// later exact lookups agree with what was displayed.
func (s *ReconcilerService) Reconcile(ctx context.Context, userID string, pois []models.POI) []models.POI {
	bookmarks, err := s.store.List(ctx, userID)
	if err != nil {
		log.Printf("Failed to fetch bookmarks for reconciliation: %v", err)
		return pois
	}

	idx := newBookmarkIndex()
	out := make([]models.POI, len(pois))
	for i, p := range pois {
		out[i] = p
		for _, b := range bookmarks {
			if math.Abs(b.Latitude-p.Lat) < coordTolerance && math.Abs(b.Longitude-p.Lon) < coordTolerance {
				key := p.CoordKey()
				idx.keys[key] = struct{}{}
				idx.ids[key] = b.ID
				out[i].Bookmarked = true
				out[i].BookmarkID = b.ID
				break
			}
		}
	}

	s.mu.Lock()
	s.indexes[userID] = idx
	s.mu.Unlock()
	return out
}

// IsBookmarked reports whether the coordinate key is in the user's index.
func (s *ReconcilerService) IsBookmarked(userID string, lat, lon float64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[userID]
	if !ok {
		return false
	}
	_, bookmarked := idx.keys[models.CoordKey(lat, lon)]
	return bookmarked
}

// BookmarkIDAt returns the stored id for the coordinate key, if any.
func (s *ReconcilerService) BookmarkIDAt(userID string, lat, lon float64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[userID]
	if !ok {
		return "", false
	}
	id, found := idx.ids[models.CoordKey(lat, lon)]
	return id, found
}

// IndexSize returns the number of indexed coordinate keys for a user.
func (s *ReconcilerService) IndexSize(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[userID]
	if !ok {
		return 0
	}
	return len(idx.keys)
}
