package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Queue
	mux.HandleFunc("/api/queue/urls", s.app.QueueHandler.SubmitHandler)     // POST - submit text/HTML/URLs
	mux.HandleFunc("/api/queue", s.app.QueueHandler.ListHandler)            // GET - list items
	mux.HandleFunc("/api/queue/pause", s.app.QueueHandler.PauseAllHandler)  // POST - pause scheduler
	mux.HandleFunc("/api/queue/resume", s.app.QueueHandler.ResumeAllHandler) // POST - resume scheduler
	mux.HandleFunc("/api/queue/clear", s.app.QueueHandler.ClearHandler)     // POST - clear terminal items
	mux.HandleFunc("/api/queue/", s.app.QueueHandler.ItemHandler)           // GET/DELETE /{id}, POST /{id}/{action}

	// API routes - Results
	mux.HandleFunc("/api/results", s.app.ResultsHandler.ListHandler) // GET - completed ingestions

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}
