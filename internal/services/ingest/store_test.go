package ingest

import (
	"testing"
	"time"

	"github.com/notesink/notesink/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreEnqueueDedup(t *testing.T) {
	store := NewStore(3, 0)

	created := store.Enqueue([]string{"https://a.test/", "https://a.test/", "https://b.test/"})
	require.Len(t, created, 2)
	assert.Equal(t, "https://a.test/", created[0].URL)
	assert.Equal(t, "https://b.test/", created[1].URL)
	assert.Equal(t, models.StatusQueued, created[0].Status)
	assert.Equal(t, 3, created[0].MaxRetries)

	// Re-submitting a known URL creates nothing, regardless of its state.
	again := store.Enqueue([]string{"https://a.test/"})
	assert.Empty(t, again)
	assert.Equal(t, 2, store.Len())
}

func TestStoreEnqueueFrontierCap(t *testing.T) {
	store := NewStore(3, 2)

	created := store.Enqueue([]string{"https://a.test/", "https://b.test/", "https://c.test/"})
	assert.Len(t, created, 2)
	assert.Equal(t, 2, store.Len())
}

func TestStorePromoteRespectsLimit(t *testing.T) {
	store := NewStore(3, 0)
	store.Enqueue([]string{"https://a.test/", "https://b.test/", "https://c.test/"})

	promoted := store.Promote(2)
	require.Len(t, promoted, 2)
	assert.Equal(t, "https://a.test/", promoted[0].URL)
	assert.Equal(t, "https://b.test/", promoted[1].URL)
	for _, item := range promoted {
		assert.Equal(t, models.StatusPending, item.Status)
		assert.Equal(t, models.ProgressPending, item.Progress)
	}

	// Two items are now active, so a second promote finds no room.
	assert.Empty(t, store.Promote(2))
	assert.Equal(t, 2, store.ActiveCount())

	// Freeing one slot lets the next queued item through.
	first := promoted[0]
	store.Update(first.ID, func(it *models.QueueItem) {
		it.SetSuccess(&models.IngestResult{NoteID: "n1", Title: "A"})
	})
	next := store.Promote(2)
	require.Len(t, next, 1)
	assert.Equal(t, "https://c.test/", next[0].URL)
}

func TestStoreRemoveRefusesActive(t *testing.T) {
	store := NewStore(3, 0)
	created := store.Enqueue([]string{"https://a.test/"})
	id := created[0].ID

	store.Promote(1)
	assert.ErrorIs(t, store.Remove(id), ErrItemActive)

	store.Update(id, func(it *models.QueueItem) {
		it.SetFailed("boom")
	})
	assert.NoError(t, store.Remove(id))
	assert.Equal(t, 0, store.Len())

	assert.ErrorIs(t, store.Remove("item_missing"), ErrItemNotFound)
}

func TestStoreRemoveFreesURLForReEnqueue(t *testing.T) {
	store := NewStore(3, 0)
	created := store.Enqueue([]string{"https://a.test/"})
	require.NoError(t, store.Remove(created[0].ID))

	again := store.Enqueue([]string{"https://a.test/"})
	require.Len(t, again, 1)
	assert.NotEqual(t, created[0].ID, again[0].ID)
}

func TestStoreClearTerminalPreservesActive(t *testing.T) {
	store := NewStore(3, 0)
	created := store.Enqueue([]string{"https://a.test/", "https://b.test/", "https://c.test/"})

	// a active, b failed, c still queued.
	store.Promote(1)
	store.Update(created[1].ID, func(it *models.QueueItem) {
		it.SetFailed("boom")
	})

	removed := store.ClearTerminal()
	assert.Equal(t, 2, removed)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "https://a.test/", items[0].URL)
}

func TestStoreClearOlderThan(t *testing.T) {
	store := NewStore(3, 0)
	created := store.Enqueue([]string{"https://old.test/", "https://new.test/"})

	store.Update(created[0].ID, func(it *models.QueueItem) {
		it.SetSuccess(&models.IngestResult{NoteID: "n1"})
	})
	store.Update(created[1].ID, func(it *models.QueueItem) {
		it.SetSuccess(&models.IngestResult{NoteID: "n2"})
	})

	// Nothing is older than an hour yet.
	assert.Equal(t, 0, store.ClearOlderThan(time.Hour))

	// Everything terminal is older than a zero cutoff.
	assert.Equal(t, 2, store.ClearOlderThan(0))
	assert.Equal(t, 0, store.Len())
}
