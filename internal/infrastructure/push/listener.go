// Package push delivers per-principal events from the Redis pub/sub channel
// the upstream broadcasts on. Messages carry a pusher-style envelope:
//
//	{"event": "notification.sent", "data": {...}}
package push

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/formdesk/dashboard-gateway/internal/core/ports"
)

const eventBuffer = 16

// Listener subscribes to push channels over Redis pub/sub.
type Listener struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewListener creates a Listener over an established Redis client.
func NewListener(client *redis.Client, log zerolog.Logger) *Listener {
	return &Listener{client: client, log: log}
}

// envelope is the wire shape of one push message.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Subscribe opens the channel and returns a cancellable subscription.
// Undecodable messages are logged and skipped; delivery order is whatever
// the transport provides.
func (l *Listener) Subscribe(ctx context.Context, channel string) (ports.PushSubscription, error) {
	pubsub := l.client.Subscribe(ctx, channel)
	// Force the subscribe round-trip so a dead Redis fails here, not later.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	events := make(chan ports.PushEvent, eventBuffer)
	sub := &subscription{pubsub: pubsub, events: events}

	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				l.log.Warn().Err(err).Str("channel", channel).Msg("undecodable push message")
				continue
			}
			if env.Event == "" {
				l.log.Warn().Str("channel", channel).Msg("push message without event name")
				continue
			}
			select {
			case events <- ports.PushEvent{Name: env.Event, Payload: env.Data}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub, nil
}

type subscription struct {
	pubsub *redis.PubSub
	events chan ports.PushEvent
}

func (s *subscription) Events() <-chan ports.PushEvent {
	return s.events
}

// Unsubscribe leaves the channel and releases the connection. The events
// channel closes once the transport drains.
func (s *subscription) Unsubscribe(context.Context) error {
	return s.pubsub.Close()
}
