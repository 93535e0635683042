// Package storage models the local key-value slot store the application keeps
// all of its state in. Every slot holds one string value.
package storage

import (
	"context"
	"sync"
)

// Store is the get/set/remove contract every backend implements. Get reports
// ok=false for a slot that was never written or has been removed.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Change describes one write to a slot.
type Change struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

// Watchable is implemented by stores that announce their writes. Delivery is
// advisory: slow receivers miss changes and are expected to re-read.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Broadcaster fans changes out to watchers. The zero value is ready to use.
type Broadcaster struct {
	mu       sync.Mutex
	watchers map[chan Change]struct{}
}

// Watch registers a receiver that is closed once ctx is done.
func (b *Broadcaster) Watch(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, 64)

	b.mu.Lock()
	if b.watchers == nil {
		b.watchers = make(map[chan Change]struct{})
	}
	b.watchers[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.watchers, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

// Publish delivers c to every watcher without blocking.
func (b *Broadcaster) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.watchers {
		select {
		case ch <- c:
		default:
			// receiver is behind, it re-reads on the next change
		}
	}
}
