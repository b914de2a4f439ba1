package handlers

import (
	"context"
	"time"

	"github.com/notesink/notesink/internal/common"
	"github.com/notesink/notesink/internal/interfaces"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// EventSubscriber bridges queue lifecycle events onto the WebSocket, with
// optional per-event throttling for high-frequency updates.
type EventSubscriber struct {
	handler      *WebSocketHandler
	eventService interfaces.EventService
	logger       arbor.ILogger
	throttlers   map[string]*rate.Limiter
	subs         []subscription
}

type subscription struct {
	eventType interfaces.EventType
	id        interfaces.Subscription
}

// NewEventSubscriber creates an event subscriber and registers it for all
// queue lifecycle events.
func NewEventSubscriber(handler *WebSocketHandler, eventService interfaces.EventService, logger arbor.ILogger, config *common.WebSocketConfig) *EventSubscriber {
	s := &EventSubscriber{
		handler:      handler,
		eventService: eventService,
		logger:       logger,
		throttlers:   make(map[string]*rate.Limiter),
	}

	if config != nil {
		for eventType, intervalStr := range config.ThrottleIntervals {
			duration, err := time.ParseDuration(intervalStr)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("event_type", eventType).
					Str("interval", intervalStr).
					Msg("Failed to parse throttle interval - skipping throttler")
				continue
			}
			s.throttlers[eventType] = rate.NewLimiter(rate.Every(duration), 1)
			logger.Debug().
				Str("event_type", eventType).
				Str("interval", intervalStr).
				Msg("Throttler initialized for event type")
		}
	}

	if eventService == nil {
		logger.Warn().Msg("EventSubscriber created with nil eventService - subscriptions will be skipped")
		return s
	}

	s.subscribe(interfaces.EventItemUpdated, s.handleItemUpdated)
	s.subscribe(interfaces.EventQueueChanged, s.handleQueueChanged)
	s.subscribe(interfaces.EventNotesUpdated, s.handleNotesUpdated)

	logger.Info().Msg("EventSubscriber registered for queue lifecycle events")

	return s
}

func (s *EventSubscriber) subscribe(eventType interfaces.EventType, handler interfaces.EventHandler) {
	id := s.eventService.Subscribe(eventType, handler)
	s.subs = append(s.subs, subscription{eventType: eventType, id: id})
}

// Unsubscribe removes all registered subscriptions.
func (s *EventSubscriber) Unsubscribe() {
	if s.eventService == nil {
		return
	}
	for _, sub := range s.subs {
		s.eventService.Unsubscribe(sub.eventType, sub.id)
	}
	s.subs = nil
}

// handleItemUpdated pushes a single item's new state to all clients.
func (s *EventSubscriber) handleItemUpdated(ctx context.Context, event interfaces.Event) error {
	if !s.shouldBroadcast(string(interfaces.EventItemUpdated)) {
		return nil
	}
	s.handler.Broadcast("item_updated", event.Payload)
	return nil
}

// handleQueueChanged pushes queue membership / running-flag changes.
func (s *EventSubscriber) handleQueueChanged(ctx context.Context, event interfaces.Event) error {
	if !s.shouldBroadcast(string(interfaces.EventQueueChanged)) {
		return nil
	}
	s.handler.Broadcast("queue_changed", event.Payload)
	return nil
}

// handleNotesUpdated notifies clients that the notes collection grew.
func (s *EventSubscriber) handleNotesUpdated(ctx context.Context, event interfaces.Event) error {
	s.handler.Broadcast("notes:updated", event.Payload)
	return nil
}

// shouldBroadcast applies the configured rate limit for an event type.
// Events without a throttler always broadcast.
func (s *EventSubscriber) shouldBroadcast(eventType string) bool {
	limiter, ok := s.throttlers[eventType]
	if !ok {
		return true
	}
	return limiter.Allow()
}
