package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/notesink/notesink/internal/models"
	"github.com/notesink/notesink/internal/services/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// fakeQueueService records calls and serves canned items.
type fakeQueueService struct {
	items   map[string]models.QueueItem
	results []models.LedgerEntry
	running bool
	actions []string
	err     error
}

func newFakeQueueService() *fakeQueueService {
	return &fakeQueueService{
		items:   make(map[string]models.QueueItem),
		running: true,
	}
}

func (f *fakeQueueService) Submit(text, html string) []string {
	f.actions = append(f.actions, "submit")
	return ingest.ExtractURLs(text, html)
}

func (f *fakeQueueService) Enqueue(urls []string) int {
	f.actions = append(f.actions, "enqueue")
	return len(urls)
}

func (f *fakeQueueService) Items() []models.QueueItem {
	out := make([]models.QueueItem, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out
}

func (f *fakeQueueService) Item(id string) (models.QueueItem, bool) {
	item, ok := f.items[id]
	return item, ok
}

func (f *fakeQueueService) Results() []models.LedgerEntry { return f.results }

func (f *fakeQueueService) itemAction(name, id string) error {
	f.actions = append(f.actions, name+":"+id)
	if _, ok := f.items[id]; !ok {
		return ingest.ErrItemNotFound
	}
	return f.err
}

func (f *fakeQueueService) PauseItem(id string) error  { return f.itemAction("pause", id) }
func (f *fakeQueueService) ResumeItem(id string) error { return f.itemAction("resume", id) }
func (f *fakeQueueService) CancelItem(id string) error { return f.itemAction("cancel", id) }
func (f *fakeQueueService) RetryItem(id string) error  { return f.itemAction("retry", id) }
func (f *fakeQueueService) RemoveItem(id string) error { return f.itemAction("remove", id) }

func (f *fakeQueueService) ClearTerminal() int {
	f.actions = append(f.actions, "clear")
	return 2
}

func (f *fakeQueueService) Pause()        { f.running = false }
func (f *fakeQueueService) Resume()       { f.running = true }
func (f *fakeQueueService) Running() bool { return f.running }

func (f *fakeQueueService) Stop(ctx context.Context) error { return nil }

func newQueueHandler(svc *fakeQueueService) *QueueHandler {
	return NewQueueHandler(svc, arbor.NewLogger())
}

func TestSubmitHandlerExtractsURLs(t *testing.T) {
	svc := newFakeQueueService()
	handler := newQueueHandler(svc)

	body := `{"text": "read https://a.test/x and https://b.test/y"}`
	req := httptest.NewRequest(http.MethodPost, "/api/queue/urls", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SubmitHandler(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Status   string   `json:"status"`
		URLs     []string `json:"urls"`
		Enqueued int      `json:"enqueued"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, []string{"https://a.test/x", "https://b.test/y"}, resp.URLs)
	assert.Equal(t, 2, resp.Enqueued)
}

func TestSubmitHandlerExplicitURLList(t *testing.T) {
	svc := newFakeQueueService()
	handler := newQueueHandler(svc)

	body := `{"urls": ["https://a.test/", "https://b.test/"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/queue/urls", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SubmitHandler(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, svc.actions, "enqueue")
}

func TestSubmitHandlerRejectsEmptySubmission(t *testing.T) {
	svc := newFakeQueueService()
	handler := newQueueHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/queue/urls", strings.NewReader(`{"text": "no links"}`))
	rec := httptest.NewRecorder()

	handler.SubmitHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitHandlerRejectsWrongMethod(t *testing.T) {
	handler := newQueueHandler(newFakeQueueService())

	req := httptest.NewRequest(http.MethodGet, "/api/queue/urls", nil)
	rec := httptest.NewRecorder()

	handler.SubmitHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListHandler(t *testing.T) {
	svc := newFakeQueueService()
	svc.items["item_1"] = models.QueueItem{ID: "item_1", URL: "https://a.test/", Status: models.StatusQueued}
	handler := newQueueHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/queue", nil)
	rec := httptest.NewRecorder()

	handler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items   []models.QueueItem `json:"items"`
		Running bool               `json:"running"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.True(t, resp.Running)
}

func TestItemHandlerActions(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{"pause", "pause:item_1"},
		{"resume", "resume:item_1"},
		{"cancel", "cancel:item_1"},
		{"retry", "retry:item_1"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			svc := newFakeQueueService()
			svc.items["item_1"] = models.QueueItem{ID: "item_1", Status: models.StatusFetching}
			handler := newQueueHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/queue/item_1/"+tt.action, nil)
			rec := httptest.NewRecorder()

			handler.ItemHandler(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, svc.actions, tt.want)
		})
	}
}

func TestItemHandlerGetAndDelete(t *testing.T) {
	svc := newFakeQueueService()
	svc.items["item_1"] = models.QueueItem{ID: "item_1", URL: "https://a.test/", Status: models.StatusSuccess}
	handler := newQueueHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/queue/item_1", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var item models.QueueItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "https://a.test/", item.URL)

	req = httptest.NewRequest(http.MethodDelete, "/api/queue/item_1", nil)
	rec = httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, svc.actions, "remove:item_1")
}

func TestItemHandlerUnknownItem(t *testing.T) {
	handler := newQueueHandler(newFakeQueueService())

	req := httptest.NewRequest(http.MethodPost, "/api/queue/item_missing/pause", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemHandlerConflict(t *testing.T) {
	svc := newFakeQueueService()
	svc.items["item_1"] = models.QueueItem{ID: "item_1", Status: models.StatusSuccess}
	svc.err = ingest.ErrItemActive
	handler := newQueueHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/queue/item_1", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestItemHandlerUnknownAction(t *testing.T) {
	svc := newFakeQueueService()
	svc.items["item_1"] = models.QueueItem{ID: "item_1"}
	handler := newQueueHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/queue/item_1/defenestrate", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearHandler(t *testing.T) {
	svc := newFakeQueueService()
	handler := newQueueHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/queue/clear", nil)
	rec := httptest.NewRecorder()
	handler.ClearHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Removed)
}

func TestPauseResumeAllHandlers(t *testing.T) {
	svc := newFakeQueueService()
	handler := newQueueHandler(svc)

	rec := httptest.NewRecorder()
	handler.PauseAllHandler(rec, httptest.NewRequest(http.MethodPost, "/api/queue/pause", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.running)

	rec = httptest.NewRecorder()
	handler.ResumeAllHandler(rec, httptest.NewRequest(http.MethodPost, "/api/queue/resume", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.running)
}

func TestResultsHandler(t *testing.T) {
	svc := newFakeQueueService()
	svc.results = []models.LedgerEntry{
		{URL: "https://a.test/", Title: "A", NoteID: "n1"},
	}
	handler := NewResultsHandler(svc, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []models.LedgerEntry `json:"results"`
		Count   int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "n1", resp.Results[0].NoteID)
}
