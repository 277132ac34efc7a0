package notify

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

const subscriberBuffer = 16

// Broadcaster fans reload notices out to subscribers. Slow subscribers miss
// notices rather than block the publisher.
type Broadcaster struct {
	subscribers map[uint64]chan models.ReloadNotice
	nextID      atomic.Uint64
	mu          sync.RWMutex
	closed      bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan models.ReloadNotice),
	}
}

// Subscribe registers a listener. After Close it returns an already closed channel.
func (b *Broadcaster) Subscribe() (uint64, <-chan models.ReloadNotice) {
	id := b.nextID.Add(1)
	ch := make(chan models.ReloadNotice, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(n models.ReloadNotice) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, ending open streams.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
