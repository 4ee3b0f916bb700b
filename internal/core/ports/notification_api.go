package ports

import (
	"context"
	"encoding/json"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

// NotificationAPI is the upstream notification history surface.
type NotificationAPI interface {
	List(ctx context.Context) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// PushEvent is one named event delivered on the principal's push channel.
type PushEvent struct {
	Name    string
	Payload json.RawMessage
}

// PushSubscription is a live subscription to a push channel. Events closes
// after Unsubscribe or when the subscribe context ends.
type PushSubscription interface {
	Events() <-chan PushEvent
	Unsubscribe(ctx context.Context) error
}

// PushSource opens per-principal push channels.
type PushSource interface {
	Subscribe(ctx context.Context, channel string) (PushSubscription, error)
}

// EventDeduper drops duplicate deliveries of the same push event.
type EventDeduper interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}
