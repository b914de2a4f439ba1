package ingest

import (
	"errors"
	"sync"
	"time"

	"github.com/notesink/notesink/internal/common"
	"github.com/notesink/notesink/internal/models"
)

var (
	// ErrItemNotFound is returned when an item id is unknown.
	ErrItemNotFound = errors.New("queue item not found")

	// ErrItemActive is returned when an operation is refused because the
	// item has an attempt in flight.
	ErrItemActive = errors.New("queue item has an attempt in flight")
)

// Store is the single shared collection of queue items and the single source
// of truth for their state. Items are kept in insertion order (the FIFO order
// the scheduler uses) and deduplicated by URL: exactly one item per distinct
// URL is ever present.
//
// All mutations go through the store's lock. Scheduling decisions are made
// inside Promote under the same lock, so active counts are never computed
// from a stale snapshot.
type Store struct {
	mu          sync.Mutex
	items       []*models.QueueItem
	byURL       map[string]*models.QueueItem
	byID        map[string]*models.QueueItem
	maxRetries  int
	maxFrontier int
}

// NewStore creates an empty store. maxFrontier caps the total number of
// items (0 = unlimited); once reached, further enqueues are dropped.
func NewStore(maxRetries, maxFrontier int) *Store {
	if maxRetries < 0 {
		maxRetries = models.DefaultMaxRetries
	}
	return &Store{
		byURL:       make(map[string]*models.QueueItem),
		byID:        make(map[string]*models.QueueItem),
		maxRetries:  maxRetries,
		maxFrontier: maxFrontier,
	}
}

// Enqueue creates a queued item for each URL not already present. URLs that
// are already in the store are silently ignored. Returns copies of the newly
// created items.
func (s *Store) Enqueue(urls []string) []models.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created []models.QueueItem
	now := time.Now()
	for _, rawURL := range urls {
		if rawURL == "" {
			continue
		}
		if _, exists := s.byURL[rawURL]; exists {
			continue
		}
		if s.maxFrontier > 0 && len(s.items) >= s.maxFrontier {
			break
		}
		item := &models.QueueItem{
			ID:         common.NewItemID(),
			URL:        rawURL,
			Status:     models.StatusQueued,
			MaxRetries: s.maxRetries,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.items = append(s.items, item)
		s.byURL[rawURL] = item
		s.byID[item.ID] = item
		created = append(created, *item)
	}
	return created
}

// Get returns a copy of the item addressed by id.
func (s *Store) Get(id string) (models.QueueItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.byID[id]
	if !ok {
		return models.QueueItem{}, false
	}
	return *item, true
}

// Update applies a mutation to the item addressed by id under the store
// lock. No-op if the item no longer exists (e.g. it was cleared while a
// worker was finishing up). Returns a copy of the updated item.
func (s *Store) Update(id string, mutate func(*models.QueueItem)) (models.QueueItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.byID[id]
	if !ok {
		return models.QueueItem{}, false
	}
	mutate(item)
	item.UpdatedAt = time.Now()
	return *item, true
}

// Items returns copies of all items in store order.
func (s *Store) Items() []models.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.QueueItem, len(s.items))
	for i, item := range s.items {
		out[i] = *item
	}
	return out
}

// Len returns the number of items in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ActiveCount returns the number of items with an attempt in flight.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Store) activeLocked() int {
	active := 0
	for _, item := range s.items {
		if item.IsActive() {
			active++
		}
	}
	return active
}

// Promote flips up to (limit - active) queued items to pending, FIFO, and
// returns copies of them. The active count and the selection happen under a
// single lock acquisition so the concurrency bound holds even when Promote
// races with worker completions and new enqueues.
func (s *Store) Promote(limit int) []models.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	available := limit - s.activeLocked()
	if available <= 0 {
		return nil
	}

	var promoted []models.QueueItem
	for _, item := range s.items {
		if len(promoted) >= available {
			break
		}
		if item.Status != models.StatusQueued {
			continue
		}
		item.SetStage(models.StatusPending, models.ProgressPending)
		promoted = append(promoted, *item)
	}
	return promoted
}

// Remove deletes the item addressed by id. Items with an attempt in flight
// cannot be removed; they must be paused or canceled first.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.byID[id]
	if !ok {
		return ErrItemNotFound
	}
	if item.IsActive() {
		return ErrItemActive
	}
	s.deleteLocked(item)
	return nil
}

// ClearTerminal bulk-removes all items that are not active, preserving
// in-flight work. Returns the number of removed items.
func (s *Store) ClearTerminal() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(func(item *models.QueueItem) bool {
		return !item.IsActive()
	})
}

// ClearOlderThan removes terminal items whose last update is older than age.
// Used by the janitor sweep.
func (s *Store) ClearOlderThan(age time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-age)
	return s.sweepLocked(func(item *models.QueueItem) bool {
		return item.IsTerminal() && item.UpdatedAt.Before(cutoff)
	})
}

func (s *Store) sweepLocked(shouldRemove func(*models.QueueItem) bool) int {
	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if shouldRemove(item) {
			delete(s.byURL, item.URL)
			delete(s.byID, item.ID)
			removed++
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return removed
}

func (s *Store) deleteLocked(target *models.QueueItem) {
	for i, item := range s.items {
		if item == target {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	delete(s.byURL, target.URL)
	delete(s.byID, target.ID)
}
