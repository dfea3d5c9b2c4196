package mapview

import (
	"sync"
	"sync/atomic"

	"crowdmarks/core/reconcile"
)

// Broadcaster fans committed mutations out to live-stream subscribers.
// Observe never blocks: a subscriber whose buffer is full misses the
// mutation and the drop is counted.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[uint64]chan reconcile.Mutation
	next    uint64
	buffer  int
	closed  bool
	dropped atomic.Uint64
}

// NewBroadcaster creates a broadcaster with per-subscriber buffers.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 1
	}
	return &Broadcaster{
		subs:   make(map[uint64]chan reconcile.Mutation),
		buffer: buffer,
	}
}

// Observe implements reconcile.Observer.
func (b *Broadcaster) Observe(m reconcile.Mutation) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- m:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe returns a mutation channel and a cancel func that releases it.
// The channel is closed on cancel or when the broadcaster closes.
func (b *Broadcaster) Subscribe() (<-chan reconcile.Mutation, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan reconcile.Mutation, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Close ends every subscription. Later subscribers get a closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped for slow subscribers.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}
