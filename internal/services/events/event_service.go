package events

import (
	"context"
	"errors"
	"sync"

	"github.com/notesink/notesink/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Service implements EventService with an in-process pub/sub pattern.
// Handlers are keyed by a subscription id so unsubscribing works for
// function values, which are not comparable.
type Service struct {
	mu          sync.RWMutex
	subscribers map[interfaces.EventType]map[interfaces.Subscription]interfaces.EventHandler
	nextSub     interfaces.Subscription
	closed      bool
	logger      arbor.ILogger
}

// NewService creates a new event service
func NewService(logger arbor.ILogger) interfaces.EventService {
	return &Service{
		subscribers: make(map[interfaces.EventType]map[interfaces.Subscription]interfaces.EventHandler),
		logger:      logger,
	}
}

// Subscribe registers a handler for an event type and returns its
// subscription id.
func (s *Service) Subscribe(eventType interfaces.EventType, handler interfaces.EventHandler) interfaces.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	sub := s.nextSub

	if s.subscribers[eventType] == nil {
		s.subscribers[eventType] = make(map[interfaces.Subscription]interfaces.EventHandler)
	}
	s.subscribers[eventType][sub] = handler

	s.logger.Debug().
		Str("event_type", string(eventType)).
		Int("subscriber_count", len(s.subscribers[eventType])).
		Msg("Event handler subscribed")

	return sub
}

// Unsubscribe removes a previously registered handler.
func (s *Service) Unsubscribe(eventType interfaces.EventType, sub interfaces.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handlers, ok := s.subscribers[eventType]; ok {
		delete(handlers, sub)
		s.logger.Debug().
			Str("event_type", string(eventType)).
			Msg("Event handler unsubscribed")
	}
}

// Publish sends an event to all subscribers asynchronously. Handler errors
// are logged, never propagated to the publisher.
func (s *Service) Publish(ctx context.Context, event interfaces.Event) error {
	handlers := s.snapshot(event.Type)
	if len(handlers) == 0 {
		return nil
	}

	for _, handler := range handlers {
		go func(h interfaces.EventHandler) {
			if err := h(ctx, event); err != nil {
				s.logger.Error().
					Err(err).
					Str("event_type", string(event.Type)).
					Msg("Event handler failed")
			}
		}(handler)
	}

	return nil
}

// PublishSync sends an event to all subscribers and waits for them to
// complete, returning any handler errors joined.
func (s *Service) PublishSync(ctx context.Context, event interfaces.Event) error {
	handlers := s.snapshot(event.Type)
	if len(handlers) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(handlers))

	for _, handler := range handlers {
		wg.Add(1)
		go func(h interfaces.EventHandler) {
			defer wg.Done()
			if err := h(ctx, event); err != nil {
				s.logger.Error().
					Err(err).
					Str("event_type", string(event.Type)).
					Msg("Event handler failed")
				errChan <- err
			}
		}(handler)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close drops all subscriptions; subsequent publishes are no-ops.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.subscribers = make(map[interfaces.EventType]map[interfaces.Subscription]interfaces.EventHandler)
	s.logger.Debug().Msg("Event service closed")
	return nil
}

func (s *Service) snapshot(eventType interfaces.EventType) []interfaces.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil
	}
	handlers := make([]interfaces.EventHandler, 0, len(s.subscribers[eventType]))
	for _, h := range s.subscribers[eventType] {
		handlers = append(handlers, h)
	}
	return handlers
}
