package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notesink/notesink/internal/common"
	"github.com/notesink/notesink/internal/interfaces"
	"github.com/notesink/notesink/internal/models"
	"github.com/ternarybob/arbor"
)

// Service is the ingestion queue controller: the store, the scheduler, and
// the per-item workers behind a single façade. It implements
// interfaces.QueueService.
type Service struct {
	store    *Store
	ledger   *Ledger
	sched    *scheduler
	policy   RetryPolicy
	fetcher  interfaces.ContentFetcher
	ingestor interfaces.NoteIngestor
	events   interfaces.EventService
	janitor  *janitor
	logger   arbor.ILogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService wires the queue controller from configuration and its
// collaborators. The events service may be nil (tests).
func NewService(cfg *common.Config, fetcher interfaces.ContentFetcher, ingestor interfaces.NoteIngestor, events interfaces.EventService, logger arbor.ILogger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	policy := RetryPolicy{
		MaxRetries: cfg.Queue.MaxRetries,
		BaseDelay:  common.Duration(cfg.Queue.RetryBaseDelay, time.Second),
		MaxDelay:   common.Duration(cfg.Queue.RetryMaxDelay, 8*time.Second),
	}

	s := &Service{
		store:    NewStore(cfg.Queue.MaxRetries, cfg.Queue.MaxFrontier),
		ledger:   NewLedger(),
		policy:   policy,
		fetcher:  fetcher,
		ingestor: ingestor,
		events:   events,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.sched = newScheduler(s.store, cfg.Queue.Concurrency, s.startWorker, logger)

	if cfg.Janitor.Enabled {
		s.janitor = newJanitor(s, cfg.Janitor, logger)
		s.janitor.Start()
	}

	return s
}

// startWorker launches one worker goroutine for a freshly promoted item.
// When the worker finishes, its slot is freed and the scheduler is
// re-kicked.
func (s *Service) startWorker(item models.QueueItem) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sched.Kick()

		w := &worker{svc: s, id: item.ID, url: item.URL}
		w.run(s.ctx)
	}()
}

// Submit extracts candidate URLs from pasted text/HTML and enqueues them.
func (s *Service) Submit(text, html string) []string {
	urls := ExtractURLs(text, html)
	if len(urls) > 0 {
		s.Enqueue(urls)
	}
	return urls
}

// Enqueue adds URLs to the queue, skipping duplicates, and kicks the
// scheduler. Returns the number of newly created items.
func (s *Service) Enqueue(urls []string) int {
	created := s.store.Enqueue(urls)
	if len(created) == 0 {
		return 0
	}

	s.logger.Info().
		Int("submitted", len(urls)).
		Int("enqueued", len(created)).
		Msg("URLs enqueued")

	s.publishQueueChanged()
	s.sched.Kick()
	return len(created)
}

// Items returns all queue items in store order.
func (s *Service) Items() []models.QueueItem {
	return s.store.Items()
}

// Item returns a single item by id.
func (s *Service) Item(id string) (models.QueueItem, bool) {
	return s.store.Get(id)
}

// Results returns the completed-ingestion ledger, most recent first.
func (s *Service) Results() []models.LedgerEntry {
	return s.ledger.Entries()
}

// PauseItem aborts an item's in-flight attempt; the worker observes the
// cause and parks the item in paused.
func (s *Service) PauseItem(id string) error {
	return s.abortItem(id, errPauseRequested, models.StatusPaused)
}

// CancelItem aborts an item's in-flight attempt terminally.
func (s *Service) CancelItem(id string) error {
	return s.abortItem(id, errCancelRequested, models.StatusCanceled)
}

// abortItem fires the item's cancellation handle with the given cause. In
// the brief window where an item is pending but its worker has not yet
// installed a handle, the transition is applied directly; the worker checks
// on startup and backs off.
func (s *Service) abortItem(id string, cause error, fallback models.Status) error {
	item, ok := s.store.Get(id)
	if !ok {
		return ErrItemNotFound
	}
	if !item.IsActive() {
		return fmt.Errorf("item %s is not in flight (status %s)", id, item.Status)
	}

	if item.Cancel != nil {
		item.Cancel(cause)
		return nil
	}

	s.update(id, func(it *models.QueueItem) {
		if it.IsActive() {
			it.Status = fallback
		}
	})
	return nil
}

// ResumeItem returns a paused item to the queue. Progress and error are
// reset; retryCount is preserved.
func (s *Service) ResumeItem(id string) error {
	return s.requeue(id, models.StatusPaused, "only paused items can be resumed")
}

// RetryItem returns a failed item to the queue for another round of
// attempts, preserving its historical retryCount.
func (s *Service) RetryItem(id string) error {
	return s.requeue(id, models.StatusError, "only failed items can be retried")
}

func (s *Service) requeue(id string, from models.Status, reason string) error {
	item, ok := s.store.Get(id)
	if !ok {
		return ErrItemNotFound
	}
	if item.Status != from {
		return fmt.Errorf("%s: item %s has status %s", reason, id, item.Status)
	}

	s.update(id, func(it *models.QueueItem) {
		if it.Status != from {
			return
		}
		it.Status = models.StatusQueued
		it.Progress = 0
		it.Error = ""
	})
	s.sched.Kick()
	return nil
}

// RemoveItem deletes a non-active item from the store.
func (s *Service) RemoveItem(id string) error {
	if err := s.store.Remove(id); err != nil {
		return err
	}
	s.publishQueueChanged()
	return nil
}

// ClearTerminal removes all non-active items; in-flight work is preserved.
func (s *Service) ClearTerminal() int {
	removed := s.store.ClearTerminal()
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Cleared terminal queue items")
		s.publishQueueChanged()
	}
	return removed
}

// Pause stops the scheduler from starting new items.
func (s *Service) Pause() {
	s.sched.Pause()
	s.logger.Info().Msg("Queue paused")
	s.publishQueueChanged()
}

// Resume re-enables the scheduler and kicks it.
func (s *Service) Resume() {
	s.sched.Resume()
	s.logger.Info().Msg("Queue resumed")
	s.publishQueueChanged()
}

// Running reports the global scheduler flag.
func (s *Service) Running() bool {
	return s.sched.Running()
}

// Stop cancels all workers and waits for them to wind down, bounded by ctx.
func (s *Service) Stop(ctx context.Context) error {
	if s.janitor != nil {
		s.janitor.Stop()
	}
	s.sched.Pause()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue service shutdown timed out: %w", ctx.Err())
	}
}

// update applies a store mutation and publishes the item-updated event.
func (s *Service) update(id string, mutate func(*models.QueueItem)) (models.QueueItem, bool) {
	item, ok := s.store.Update(id, mutate)
	if ok && s.events != nil {
		s.events.Publish(context.Background(), interfaces.Event{
			Type:    interfaces.EventItemUpdated,
			Payload: item,
		})
	}
	return item, ok
}

func (s *Service) publishQueueChanged() {
	if s.events == nil {
		return
	}
	s.events.Publish(context.Background(), interfaces.Event{
		Type: interfaces.EventQueueChanged,
		Payload: map[string]interface{}{
			"total":   s.store.Len(),
			"active":  s.store.ActiveCount(),
			"running": s.sched.Running(),
		},
	})
}

func (s *Service) publishNotesUpdated(item models.QueueItem) {
	if s.events == nil {
		return
	}
	payload := map[string]interface{}{
		"url":   item.URL,
		"title": item.Title,
	}
	if item.Result != nil {
		payload["note_id"] = item.Result.NoteID
	}
	s.events.Publish(context.Background(), interfaces.Event{
		Type:    interfaces.EventNotesUpdated,
		Payload: payload,
	})
}
