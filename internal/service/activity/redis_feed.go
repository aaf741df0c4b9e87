package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/lead-relay/internal/domain"
)

// redisFeedKey is the list key holding the serialized event stream.
const redisFeedKey = "lead_relay:activity_feed"

// RedisFeed keeps the activity stream in a capped Redis list so the feed
// survives restarts and is shared across instances.
type RedisFeed struct {
	client *redis.Client
	key    string
	cap    int64
}

// NewRedisFeed creates a Redis-backed feed retaining at most size events.
// size <= 0 selects DefaultFeedSize.
func NewRedisFeed(client *redis.Client, size int) *RedisFeed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &RedisFeed{client: client, key: redisFeedKey, cap: int64(size)}
}

func (f *RedisFeed) Record(ctx context.Context, ev domain.ActivityEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}

	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, f.key, data)
	pipe.LTrim(ctx, f.key, 0, f.cap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record activity event: %w", err)
	}
	return nil
}

func (f *RedisFeed) Recent(ctx context.Context, n int) ([]domain.ActivityEvent, error) {
	if n <= 0 || int64(n) > f.cap {
		n = int(f.cap)
	}
	raw, err := f.client.LRange(ctx, f.key, 0, int64(n)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity feed: %w", err)
	}

	out := make([]domain.ActivityEvent, 0, len(raw))
	for _, item := range raw {
		var ev domain.ActivityEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			// Skip entries that fail to decode rather than breaking the
			// whole monitor view.
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
