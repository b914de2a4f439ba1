package ingest

// worker.go drives one item's fetch -> extract -> upload pipeline, including
// retry with exponential backoff and cooperative cancellation. Failures are
// fully contained here; nothing propagates to the scheduler.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notesink/notesink/internal/models"
)

// Cancellation causes distinguish the two user actions that abort an
// in-flight attempt.
var (
	errPauseRequested  = errors.New("pause requested")
	errCancelRequested = errors.New("cancel requested")
)

type worker struct {
	svc *Service
	id  string
	url string
}

// run executes attempts until the item reaches a terminal state or is
// paused. Only this worker mutates the item's status and progress while it
// is active; pause/cancel reach it through the attempt's cancellation handle.
func (w *worker) run(ctx context.Context) {
	for {
		attemptCtx, cancel := context.WithCancelCause(ctx)

		// Install the fresh handle for this attempt. If the item was paused
		// or canceled in the window before the worker got going (or removed
		// outright), stop without touching it.
		proceed := false
		_, ok := w.svc.update(w.id, func(it *models.QueueItem) {
			if it.IsActive() {
				it.Cancel = cancel
				it.SetStage(models.StatusPending, models.ProgressPending)
				proceed = true
			}
		})
		if !ok || !proceed {
			cancel(nil)
			return
		}

		err := w.attempt(attemptCtx)
		if err == nil {
			cancel(nil)
			return
		}

		if w.finishAborted(attemptCtx) {
			cancel(nil)
			return
		}

		// Transient failure: burn one retry, or fail terminally once the
		// budget is exhausted.
		retry, budget := 0, 0
		w.svc.update(w.id, func(it *models.QueueItem) {
			it.RetryCount++
			retry = it.RetryCount
			budget = it.MaxRetries
		})

		if retry > budget {
			w.svc.update(w.id, func(it *models.QueueItem) {
				it.SetFailed(fmt.Sprintf("Failed after %d attempts: %v", budget, err))
			})
			w.svc.logger.Warn().
				Str("item_id", w.id).
				Str("url", w.url).
				Int("attempts", retry).
				Err(err).
				Msg("Retries exhausted")
			cancel(nil)
			return
		}

		w.svc.update(w.id, func(it *models.QueueItem) {
			it.Error = fmt.Sprintf("Retry %d/%d: %v", retry, budget, err)
			it.Progress = models.ProgressPending
		})

		delay := w.svc.policy.Delay(retry)
		w.svc.logger.Debug().
			Str("item_id", w.id).
			Int("retry", retry).
			Dur("backoff", delay).
			Err(err).
			Msg("Retrying after backoff")

		// The previous attempt's handle stays installed through the sleep,
		// so pause/cancel during the backoff take effect immediately instead
		// of firing a retry after resume.
		timer := time.NewTimer(delay)
		select {
		case <-attemptCtx.Done():
			timer.Stop()
			w.finishAborted(attemptCtx)
			cancel(nil)
			return
		case <-timer.C:
		}
		cancel(nil)
	}
}

// finishAborted applies the pause or cancel transition when the attempt's
// context was aborted. Returns false for ordinary failures so the caller
// runs the retry path instead.
func (w *worker) finishAborted(attemptCtx context.Context) bool {
	if attemptCtx.Err() == nil {
		return false
	}

	if errors.Is(context.Cause(attemptCtx), errPauseRequested) {
		// Pause leaves retryCount and the last error untouched; resuming
		// re-enters the queue.
		w.svc.update(w.id, func(it *models.QueueItem) {
			it.Status = models.StatusPaused
			it.Cancel = nil
		})
		return true
	}

	// Explicit cancel, or service shutdown tearing down the base context.
	// Terminal either way; never retried.
	w.svc.update(w.id, func(it *models.QueueItem) {
		it.Status = models.StatusCanceled
		it.Cancel = nil
	})
	return true
}

// attempt executes one pass of the pipeline. Returning nil means the item
// reached success; any error is classified by the caller.
func (w *worker) attempt(ctx context.Context) error {
	w.svc.update(w.id, func(it *models.QueueItem) {
		it.SetStage(models.StatusFetching, models.ProgressFetching)
	})

	page, err := w.svc.fetcher.FetchContent(ctx, w.url)
	if err != nil {
		return err
	}

	w.svc.update(w.id, func(it *models.QueueItem) {
		it.SetStage(models.StatusExtracting, models.ProgressExtracting)
		it.Title = page.Title
		it.SiteName = page.SiteName
	})

	w.svc.update(w.id, func(it *models.QueueItem) {
		it.SetStage(models.StatusUploading, models.ProgressUploading)
	})

	pdf := IsPDFURL(w.url)
	var result *models.IngestResult
	if pdf {
		result, err = w.svc.ingestor.IngestPDF(ctx, w.url, page.Title)
	} else {
		canonical := page.FinalURL
		if canonical == "" {
			canonical = w.url
		}
		result, err = w.svc.ingestor.IngestContent(ctx, &models.NoteSubmission{
			URL:           canonical,
			Title:         page.Title,
			Content:       page.Text(),
			SiteName:      page.SiteName,
			Byline:        page.Byline,
			PublishedTime: page.PublishedTime,
		})
	}
	if err != nil {
		return err
	}

	item, _ := w.svc.update(w.id, func(it *models.QueueItem) {
		it.SetSuccess(result)
	})

	w.svc.ledger.Record(item)
	w.svc.publishNotesUpdated(item)

	if !pdf && len(page.Links) > 0 {
		w.svc.discoverLinks(w.url, page.Links)
	}

	return nil
}
