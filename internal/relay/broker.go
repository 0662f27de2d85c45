package relay

import (
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 64

// Event is one named message fanned out to subscribers. Payload is JSON.
type Event struct {
	Name    string
	Payload string
}

// Broker fans out events to every subscriber and remembers the latest event
// of each sticky name so late joiners start from current state.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	sticky      map[string]Event
	stickyOrder []string
	nextID      atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[int64]chan Event),
		sticky:      make(map[string]Event),
	}
}

// Subscribe registers a new client. The channel is buffered and seeded with
// the latest sticky events. Slow consumers have plain events dropped, while a
// sticky event evicts the oldest queued one so the newest state arrives.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	for _, name := range b.stickyOrder {
		ch <- b.sticky[name]
	}
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers without blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.fanOut(evt)
}

// PublishSticky publishes evt and keeps it as the replay value for its name.
func (b *Broker) PublishSticky(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sticky[evt.Name]; !ok {
		b.stickyOrder = append(b.stickyOrder, evt.Name)
	}
	b.sticky[evt.Name] = evt
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
			continue
		default:
		}
		// Full buffer: evict the oldest queued event.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *Broker) fanOut(evt Event) {
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Latest returns the sticky event for name.
func (b *Broker) Latest(name string) (Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	evt, ok := b.sticky[name]
	return evt, ok
}

// ClientCount returns the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
