package ingest

import (
	"sync"
	"time"

	"github.com/notesink/notesink/internal/models"
)

// Ledger accumulates completed ingestion results for display, most recent
// first. It is append-only and never consulted by scheduling logic.
type Ledger struct {
	mu      sync.Mutex
	entries []models.LedgerEntry
}

// NewLedger creates an empty results ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record prepends a completed ingestion.
func (l *Ledger) Record(item models.QueueItem) {
	entry := models.LedgerEntry{
		URL:         item.URL,
		Title:       item.Title,
		CompletedAt: time.Now(),
	}
	if item.Result != nil {
		entry.NoteID = item.Result.NoteID
		entry.ChunkCount = item.Result.ChunkCount
		if entry.Title == "" {
			entry.Title = item.Result.Title
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]models.LedgerEntry{entry}, l.entries...)
}

// Entries returns a copy of the ledger, most recent first.
func (l *Ledger) Entries() []models.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded results.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
