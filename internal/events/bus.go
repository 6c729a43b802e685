package events

import (
	"log"
	"runtime/debug"
	"sync"
)

// Handler consumes a single event. Handlers must not block for long; slow
// transports should buffer internally.
type Handler func(Event)

// Bus is an in-process publish/subscribe fan-out. Publishing is asynchronous:
// handlers run on a dedicated goroutine strictly after Publish returns, so a
// caller that publishes after its unit of work commits can never leak an
// event for rolled-back state.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	queue    chan Event
	done     chan struct{}
	once     sync.Once
}

// NewBus creates a Bus and starts its dispatch loop.
func NewBus() *Bus {
	b := &Bus{
		queue: make(chan Event, 256),
		done:  make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish enqueues an event for asynchronous dispatch. Events are dropped
// with a log line if the queue is full; delivery is best-effort by contract.
func (b *Bus) Publish(e Event) {
	select {
	case <-b.done:
	case b.queue <- e:
	default:
		log.Printf("event bus queue full, dropping %s event", e.Type)
	}
}

func (b *Bus) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case e := <-b.queue:
			b.mu.RLock()
			handlers := make([]Handler, len(b.handlers))
			copy(handlers, b.handlers)
			b.mu.RUnlock()
			for _, h := range handlers {
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in event handler for %s: %v\n%s", e.Type, r, debug.Stack())
						}
					}()
					h(e)
				}()
			}
		}
	}
}

// Close stops the dispatch loop. Queued events are discarded.
func (b *Bus) Close() {
	b.once.Do(func() { close(b.done) })
}
