package installprompt

import (
	"sync"
	"time"
)

// Event is a prompt lifecycle event carried on the bus.
type Event struct {
	Name       string
	Properties map[string]any
	Timestamp  time.Time
}

// EventHandler processes prompt events.
type EventHandler func(event *Event)

// eventBusBufferSize is the capacity of the async event channel.
// Events are dropped if the buffer is full to avoid blocking callers.
const eventBusBufferSize = 256

// subscriberBuffer is the per-channel-subscriber capacity. Events are
// dropped for subscribers that stop draining.
const subscriberBuffer = 32

// EventBus is an async pub/sub for prompt lifecycle events. Publish is
// non-blocking: events go to a buffered channel and are dispatched by a
// worker goroutine, so controllers are never blocked by slow consumers
// (SSE writers, history persistence).
type EventBus struct {
	handlers []EventHandler
	subs     map[chan *Event]struct{}
	mu       sync.RWMutex
	eventCh  chan *Event
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewEventBus creates a new event bus and starts its worker.
func NewEventBus() *EventBus {
	b := &EventBus{
		handlers: make([]EventHandler, 0),
		subs:     make(map[chan *Event]struct{}),
		eventCh:  make(chan *Event, eventBusBufferSize),
		stopCh:   make(chan struct{}),
	}
	go b.processLoop()
	return b
}

// Subscribe registers a permanent handler for prompt events.
func (b *EventBus) Subscribe(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// SubscribeChan registers a channel subscriber for transient consumers
// (SSE clients). The returned cancel releases the subscription and
// closes the channel; it is safe to call multiple times.
func (b *EventBus) SubscribeChan() (<-chan *Event, func()) {
	ch := make(chan *Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish enqueues an event for async processing. Non-blocking: if the
// buffer is full the event is dropped. Events are silently discarded
// after Stop.
func (b *EventBus) Publish(event *Event) {
	select {
	case <-b.stopCh:
		return
	default:
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	default:
		// Buffer full, drop event to avoid blocking callers.
	}
}

// Stop shuts down the worker goroutine. Safe to call multiple times.
func (b *EventBus) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
	})
}

// processLoop drains the event channel and dispatches to handlers.
func (b *EventBus) processLoop() {
	for {
		select {
		case event := <-b.eventCh:
			b.dispatch(event)
		case <-b.stopCh:
			// Drain remaining events before exiting
			for {
				select {
				case event := <-b.eventCh:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (b *EventBus) dispatch(event *Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	// Channel sends stay under the read lock so cancel cannot close a
	// channel mid-send; sends are non-blocking so the lock is held briefly.
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Subscriber not draining, drop rather than block the bus.
		}
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.safeCall(handler, event)
	}
}

// safeCall invokes a handler with panic recovery so a panicking handler
// cannot kill the bus goroutine.
func (b *EventBus) safeCall(handler EventHandler, event *Event) {
	defer func() {
		recover() //nolint:errcheck // intentionally swallowed to keep bus alive
	}()
	handler(event)
}
