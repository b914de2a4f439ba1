package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	// EventItemUpdated fires whenever a queue item's status, progress, or
	// error text changes.
	EventItemUpdated EventType = "item_updated"

	// EventQueueChanged fires when the set of items changes (enqueue, remove,
	// clear) or the global running flag flips.
	EventQueueChanged EventType = "queue_changed"

	// EventNotesUpdated fires once per successful ingestion so other pages
	// can refresh their own state. Fire-and-forget.
	EventNotesUpdated EventType = "notes:updated"
)

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// Subscription identifies a registered handler so it can be removed.
type Subscription int

// EventService manages the in-process pub/sub event bus
type EventService interface {
	// Subscribe registers a handler for an event type
	Subscribe(eventType EventType, handler EventHandler) Subscription

	// Unsubscribe removes a previously registered handler
	Unsubscribe(eventType EventType, sub Subscription)

	// Publish sends an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes an event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
