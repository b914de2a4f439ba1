package interfaces

import (
	"context"

	"github.com/notesink/notesink/internal/models"
)

// QueueService drives bulk URL ingestion: it accepts bursts of user-submitted
// URLs, fetches and ingests each under a concurrency cap, retries transient
// failures with exponential backoff, and supports pause/cancel per item.
type QueueService interface {
	// Submit extracts candidate URLs from pasted text and/or HTML and
	// enqueues the new ones. Returns the extracted URL list.
	Submit(text, html string) []string

	// Enqueue adds URLs directly, skipping those already present.
	// Returns the number of newly created items.
	Enqueue(urls []string) int

	// Items returns all queue items in store order.
	Items() []models.QueueItem

	// Item returns a single item by id.
	Item(id string) (models.QueueItem, bool)

	// Results returns the completed-ingestion ledger, most recent first.
	Results() []models.LedgerEntry

	// PauseItem aborts an item's in-flight attempt; the item becomes
	// resumable. Only valid for active items.
	PauseItem(id string) error

	// ResumeItem returns a paused item to the queue with progress reset and
	// error cleared; retryCount is preserved.
	ResumeItem(id string) error

	// CancelItem aborts an item's in-flight attempt terminally.
	CancelItem(id string) error

	// RetryItem returns a failed item to the queue for another round of
	// attempts. retryCount is preserved.
	RetryItem(id string) error

	// RemoveItem deletes an item; refused while the item is active.
	RemoveItem(id string) error

	// ClearTerminal removes all non-active items, returning the count.
	ClearTerminal() int

	// Pause stops the scheduler from starting new items. Running workers are
	// not disturbed.
	Pause()

	// Resume re-enables the scheduler and kicks it.
	Resume()

	// Running reports the global scheduler flag.
	Running() bool

	// Stop cancels all workers and releases resources.
	Stop(ctx context.Context) error
}
