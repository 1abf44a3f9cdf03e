// Package bus is the in-process publish/subscribe channel that carries
// cross-component notifications (currently only logout). It is owned by
// the composition root and injected into publishers and subscribers, so
// independent components reset without reaching for ambient globals.
package bus

import "sync"

// Event identifies a notification kind. Events carry no payload.
type Event int

// EventLogout signals that the session ended and local state tied to it
// should be discarded.
const EventLogout Event = iota

// Handler receives published events.
type Handler func(Event)

type subscriber struct {
	id int64
	fn Handler
}

// Bus delivers events synchronously to subscribers in registration order.
// A publish reaches exactly the handlers registered when it starts;
// overlapping publishes are not queued.
type Bus struct {
	mu     sync.Mutex
	nextID int64
	subs   []subscriber
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler and returns an unsubscribe func. The
// unsubscribe func is idempotent and must be called on teardown to avoid
// leaking the handler.
func (b *Bus) Subscribe(fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish invokes current subscribers synchronously, in registration
// order. Handlers registered during a publish do not see that publish.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		s.fn(e)
	}
}

// SubscriberCount returns the number of registered handlers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
