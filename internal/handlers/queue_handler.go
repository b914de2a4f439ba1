package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/notesink/notesink/internal/interfaces"
	"github.com/notesink/notesink/internal/services/ingest"
	"github.com/ternarybob/arbor"
)

// QueueHandler handles ingestion queue API requests
type QueueHandler struct {
	queueService interfaces.QueueService
	logger       arbor.ILogger
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queueService interfaces.QueueService, logger arbor.ILogger) *QueueHandler {
	return &QueueHandler{
		queueService: queueService,
		logger:       logger,
	}
}

// SubmitHandler accepts pasted text/HTML or an explicit URL list and
// enqueues every extracted URL.
// POST /api/queue/urls
func (h *QueueHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Text string   `json:"text"`
		HTML string   `json:"html"`
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var extracted []string
	enqueued := 0
	if len(req.URLs) > 0 {
		extracted = req.URLs
		enqueued = h.queueService.Enqueue(req.URLs)
	} else {
		extracted = h.queueService.Submit(req.Text, req.HTML)
		enqueued = len(extracted)
	}

	if len(extracted) == 0 {
		WriteError(w, http.StatusBadRequest, "No URLs found in submission")
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":   "accepted",
		"urls":     extracted,
		"enqueued": enqueued,
	})
}

// ListHandler returns all queue items plus the global running flag.
// GET /api/queue
func (h *QueueHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":   h.queueService.Items(),
		"running": h.queueService.Running(),
	})
}

// PauseAllHandler stops the scheduler from starting new items.
// POST /api/queue/pause
func (h *QueueHandler) PauseAllHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	h.queueService.Pause()
	WriteSuccess(w, "Queue paused")
}

// ResumeAllHandler re-enables the scheduler.
// POST /api/queue/resume
func (h *QueueHandler) ResumeAllHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	h.queueService.Resume()
	WriteSuccess(w, "Queue resumed")
}

// ClearHandler removes all non-active items.
// POST /api/queue/clear
func (h *QueueHandler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	removed := h.queueService.ClearTerminal()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"removed": removed,
	})
}

// ItemHandler routes per-item requests:
//
//	GET    /api/queue/{id}
//	DELETE /api/queue/{id}
//	POST   /api/queue/{id}/pause
//	POST   /api/queue/{id}/resume
//	POST   /api/queue/{id}/cancel
//	POST   /api/queue/{id}/retry
func (h *QueueHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/queue/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "Item ID required")
		return
	}

	id, action, _ := strings.Cut(path, "/")

	switch {
	case action == "" && r.Method == http.MethodGet:
		item, ok := h.queueService.Item(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "Item not found")
			return
		}
		WriteJSON(w, http.StatusOK, item)

	case action == "" && r.Method == http.MethodDelete:
		h.itemAction(w, id, "Item removed", h.queueService.RemoveItem)

	case r.Method != http.MethodPost:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

	case action == "pause":
		h.itemAction(w, id, "Item paused", h.queueService.PauseItem)
	case action == "resume":
		h.itemAction(w, id, "Item resumed", h.queueService.ResumeItem)
	case action == "cancel":
		h.itemAction(w, id, "Item canceled", h.queueService.CancelItem)
	case action == "retry":
		h.itemAction(w, id, "Item requeued", h.queueService.RetryItem)

	default:
		WriteError(w, http.StatusNotFound, "Unknown queue action: "+action)
	}
}

func (h *QueueHandler) itemAction(w http.ResponseWriter, id, message string, fn func(string) error) {
	if err := fn(id); err != nil {
		if errors.Is(err, ingest.ErrItemNotFound) {
			WriteError(w, http.StatusNotFound, "Item not found")
		} else {
			WriteError(w, http.StatusConflict, err.Error())
		}
		return
	}
	WriteSuccess(w, message)
}
