package activity

import (
	"context"
	"sync"

	"github.com/ignite/lead-relay/internal/domain"
)

// DefaultFeedSize caps how many recent events a feed retains.
const DefaultFeedSize = 100

// Feed stores the recent-activity stream for the live monitor, newest first.
type Feed interface {
	Record(ctx context.Context, ev domain.ActivityEvent) error
	Recent(ctx context.Context, n int) ([]domain.ActivityEvent, error)
}

// MemoryFeed is an in-process capped feed, used when no Redis is configured
// and in tests.
type MemoryFeed struct {
	mu     sync.RWMutex
	events []domain.ActivityEvent // newest first
	cap    int
}

// NewMemoryFeed creates a feed retaining at most size events.
// size <= 0 selects DefaultFeedSize.
func NewMemoryFeed(size int) *MemoryFeed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &MemoryFeed{cap: size}
}

func (f *MemoryFeed) Record(_ context.Context, ev domain.ActivityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append([]domain.ActivityEvent{ev}, f.events...)
	if len(f.events) > f.cap {
		f.events = f.events[:f.cap]
	}
	return nil
}

func (f *MemoryFeed) Recent(_ context.Context, n int) ([]domain.ActivityEvent, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if n <= 0 || n > len(f.events) {
		n = len(f.events)
	}
	out := make([]domain.ActivityEvent, n)
	copy(out, f.events[:n])
	return out, nil
}
