package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"deptsite/internal/shared/logger"
)

// Event represents a generic event
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler defines the event handler function type
type Handler func(ctx context.Context, event Event) error

// EventBusInterface defines the contract for event bus implementations
type EventBusInterface interface {
	Subscribe(eventType string, handler Handler)
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
	Unsubscribe(eventType string)
	GetSubscriberCount(eventType string) int
}

// EventBus is an in-memory event bus. Handlers for one event type run in
// registration order; a failing handler does not stop the others.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
}

// NewEventBus creates a new event bus instance
func NewEventBus(log logger.Logger) *EventBus {
	if log == nil {
		log = &noopLogger{}
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log,
	}
}

// Subscribe adds a handler for a specific event type
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// Unsubscribe removes all handlers for an event type
func (eb *EventBus) Unsubscribe(eventType string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.handlers, eventType)
}

// Publish delivers the event to all subscribed handlers synchronously and
// returns the first handler error encountered, if any.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := make([]Handler, len(eb.handlers[event.Type()]))
	copy(handlers, eb.handlers[event.Type()])
	eb.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			eb.logger.WithFields(map[string]interface{}{
				"event_type": event.Type(),
				"source":     event.Source(),
			}).Errorf("event handler failed: %v", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("handler for %q failed: %w", event.Type(), err)
			}
		}
	}
	return firstErr
}

// PublishAndForget delivers the event asynchronously, dropping handler errors
// after logging them. Intended for best-effort notifications such as cache
// invalidation.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	go func() {
		// Detach from the request context so an aborted request does not
		// cancel the notification.
		if err := eb.Publish(context.WithoutCancel(ctx), event); err != nil {
			eb.logger.Warnf("async event delivery for %q failed: %v", event.Type(), err)
		}
	}()
}

// GetSubscriberCount returns the number of handlers for an event type
func (eb *EventBus) GetSubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// BasicEvent is a plain value implementation of Event.
type BasicEvent struct {
	EventType   string
	EventData   interface{}
	EventTime   time.Time
	EventSource string
}

// NewBasicEvent creates a BasicEvent stamped with the current time.
func NewBasicEvent(eventType, source string, data interface{}) *BasicEvent {
	return &BasicEvent{
		EventType:   eventType,
		EventData:   data,
		EventTime:   time.Now().UTC(),
		EventSource: source,
	}
}

func (e *BasicEvent) Type() string         { return e.EventType }
func (e *BasicEvent) Data() interface{}    { return e.EventData }
func (e *BasicEvent) Timestamp() time.Time { return e.EventTime }
func (e *BasicEvent) Source() string       { return e.EventSource }

// noopLogger is used when no logger is supplied.
type noopLogger struct{}

func (n *noopLogger) Debug(args ...interface{})                        {}
func (n *noopLogger) Info(args ...interface{})                         {}
func (n *noopLogger) Warn(args ...interface{})                         {}
func (n *noopLogger) Error(args ...interface{})                        {}
func (n *noopLogger) Fatal(args ...interface{})                        {}
func (n *noopLogger) Debugf(format string, args ...interface{})        {}
func (n *noopLogger) Infof(format string, args ...interface{})         {}
func (n *noopLogger) Warnf(format string, args ...interface{})         {}
func (n *noopLogger) Errorf(format string, args ...interface{})        {}
func (n *noopLogger) Fatalf(format string, args ...interface{})        {}
func (n *noopLogger) WithFields(map[string]interface{}) logger.Logger  { return n }
func (n *noopLogger) WithContext(ctx context.Context) logger.Logger    { return n }
func (n *noopLogger) WithComponent(component string) logger.Logger     { return n }
