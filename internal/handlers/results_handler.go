package handlers

import (
	"net/http"

	"github.com/notesink/notesink/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// ResultsHandler serves the completed-ingestion ledger
type ResultsHandler struct {
	queueService interfaces.QueueService
	logger       arbor.ILogger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(queueService interfaces.QueueService, logger arbor.ILogger) *ResultsHandler {
	return &ResultsHandler{
		queueService: queueService,
		logger:       logger,
	}
}

// ListHandler returns completed ingestions, most recent first.
// GET /api/results
func (h *ResultsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	results := h.queueService.Results()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
