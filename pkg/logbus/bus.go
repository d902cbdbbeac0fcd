package logbus

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultCapacity is the per-subscriber buffer size. A subscriber that
// lags more than this many records behind starts losing its oldest ones.
const DefaultCapacity = 1000

// Bus is a bounded broadcast channel for access-log records. Publishing
// never blocks; slow subscribers observe dropped records instead.
type Bus struct {
	capacity int
	onDrop   func()

	mu   sync.RWMutex
	subs map[uuid.UUID]chan *Record
}

// Option configures a Bus.
type Option func(*Bus)

// WithDropHandler installs a callback invoked once per dropped record.
// Used to feed drop counters; the callback must not block.
func WithDropHandler(fn func()) Option {
	return func(b *Bus) {
		b.onDrop = fn
	}
}

// New creates a Bus with the given per-subscriber capacity.
// Non-positive capacities fall back to DefaultCapacity.
func New(capacity int, opts ...Option) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Bus{
		capacity: capacity,
		subs:     make(map[uuid.UUID]chan *Record),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is a handle to a bus subscriber. Close removes the
// subscriber; records published afterwards are not delivered to it.
type Subscription struct {
	id  uuid.UUID
	ch  chan *Record
	bus *Bus

	once sync.Once
}

// C returns the channel on which records are delivered. The channel is
// closed when the subscription is closed.
func (s *Subscription) C() <-chan *Record {
	return s.ch
}

// Close removes the subscriber from the bus and closes the channel.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Subscribe registers a new subscriber. The subscriber only sees records
// published after this call returns.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{
		id:  uuid.New(),
		ch:  make(chan *Record, b.capacity),
		bus: b,
	}
	b.mu.Lock()
	b.subs[s.id] = s.ch
	b.mu.Unlock()
	return s
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers rec to every subscriber. It never blocks: when a
// subscriber's buffer is full, its oldest buffered record is discarded to
// make room.
func (b *Bus) Publish(rec *Record) {
	if rec == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- rec:
			continue
		default:
		}
		// Buffer full: drop the oldest, then try once more. The second
		// send can still lose the race against a concurrent publisher,
		// in which case this record is the one dropped.
		select {
		case <-ch:
			if b.onDrop != nil {
				b.onDrop()
			}
		default:
		}
		select {
		case ch <- rec:
		default:
			if b.onDrop != nil {
				b.onDrop()
			}
		}
	}
}
