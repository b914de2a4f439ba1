package app

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/notesink/notesink/internal/common"
	"github.com/notesink/notesink/internal/handlers"
	"github.com/notesink/notesink/internal/interfaces"
	"github.com/notesink/notesink/internal/services/events"
	"github.com/notesink/notesink/internal/services/ingest"
	"github.com/notesink/notesink/internal/services/notesapi"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Services
	EventService interfaces.EventService
	NotesClient  *notesapi.Client
	QueueService interfaces.QueueService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	QueueHandler    *handlers.QueueHandler
	ResultsHandler  *handlers.ResultsHandler
	WSHandler       *handlers.WebSocketHandler
	EventSubscriber *handlers.EventSubscriber
}

// New creates the application with all services and handlers wired
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	// Services
	a.EventService = events.NewService(logger)
	a.NotesClient = notesapi.NewClient(config.Backend, logger)
	a.QueueService = ingest.NewService(config, a.NotesClient, a.NotesClient, a.EventService, logger)

	// Handlers
	a.APIHandler = handlers.NewAPIHandler()
	a.QueueHandler = handlers.NewQueueHandler(a.QueueService, logger)
	a.ResultsHandler = handlers.NewResultsHandler(a.QueueService, logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.QueueService, logger)
	a.EventSubscriber = handlers.NewEventSubscriber(a.WSHandler, a.EventService, logger, &config.WebSocket)

	logger.Info().
		Str("backend", config.Backend.BaseURL).
		Int("concurrency", config.Queue.Concurrency).
		Msg("Application initialized")

	return a, nil
}

// Close shuts down all services in reverse dependency order
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.QueueService.Stop(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Queue service did not stop cleanly")
	}

	a.EventSubscriber.Unsubscribe()
	a.EventService.Close()

	a.Logger.Info().Msg("Application closed")
}
