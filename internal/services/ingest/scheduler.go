package ingest

import (
	"sync"

	"github.com/notesink/notesink/internal/models"
	"github.com/ternarybob/arbor"
)

// scheduler maintains the invariant "active count <= concurrency limit" by
// promoting queued items whenever capacity exists. It is re-kicked after
// every store mutation that could free or add capacity: a worker finishing,
// a new enqueue, pause/cancel/retry actions.
type scheduler struct {
	store  *Store
	limit  int
	launch func(item models.QueueItem)
	logger arbor.ILogger

	mu      sync.Mutex
	running bool
}

func newScheduler(store *Store, limit int, launch func(models.QueueItem), logger arbor.ILogger) *scheduler {
	if limit < 1 {
		limit = 1
	}
	return &scheduler{
		store:   store,
		limit:   limit,
		launch:  launch,
		running: true,
		logger:  logger,
	}
}

// Kick promotes queued items up to the free capacity and launches a worker
// for each. Idempotent and safe to invoke repeatedly; a no-op while the
// queue is paused or when no capacity or queued items exist. The promotion
// itself happens under the store lock, so concurrent kicks never
// over-schedule.
func (s *scheduler) Kick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	promoted := s.store.Promote(s.limit)
	for _, item := range promoted {
		s.logger.Debug().
			Str("item_id", item.ID).
			Str("url", item.URL).
			Msg("Starting worker for queued item")
		s.launch(item)
	}
}

// Pause stops the scheduler from starting new items. Workers already running
// are not disturbed; their individual pause must be invoked separately.
func (s *scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Resume re-enables scheduling and immediately fills free capacity.
func (s *scheduler) Resume() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.Kick()
}

// Running reports whether the queue is accepting new starts.
func (s *scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
