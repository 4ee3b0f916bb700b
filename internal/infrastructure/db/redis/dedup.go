package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// EventDedup drops duplicate push deliveries by notification id, backed by
// Redis. Key format: pushdedup:<notification_id>
type EventDedup struct {
	client *redis.Client
}

// NewEventDedup creates an EventDedup wrapping the given Redis client.
func NewEventDedup(client *redis.Client) *EventDedup {
	return &EventDedup{client: client}
}

// Seen reports whether this notification id has already been delivered.
func (d *EventDedup) Seen(ctx context.Context, id string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this notification id was delivered (expires after dedupTTL).
func (d *EventDedup) Mark(ctx context.Context, id string) error {
	return d.client.Set(ctx, d.key(id), "1", dedupTTL).Err()
}

func (d *EventDedup) key(id string) string {
	return fmt.Sprintf("pushdedup:%s", id)
}
