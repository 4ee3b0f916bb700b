package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/formdesk/dashboard-gateway/internal/api/metrics"
	"github.com/formdesk/dashboard-gateway/internal/core/domain"
	"github.com/formdesk/dashboard-gateway/internal/core/ports"
)

// Push event names delivered on the per-principal channel.
const (
	EventNotificationSent = "notification.sent"
	EventFormAssigned     = "form.assigned"
	EventFormSubmitted    = "form.submitted"
)

// userChannel is the per-principal push channel name.
func userChannel(userID string) string {
	return "user." + userID
}

// NotificationService holds the local notification state: the history fetched
// from the upstream plus push events merged in arrival order. Notifications
// are never deleted locally; the only mutation is setting the read timestamp.
type NotificationService struct {
	mu     sync.Mutex
	api    ports.NotificationAPI
	source ports.PushSource
	dedup  ports.EventDeduper
	log    zerolog.Logger
	now    func() time.Time

	items    []domain.Notification
	subs     map[int]chan domain.Notification
	nextSub  int
	listener ports.PushSubscription
	done     chan struct{}
}

// NotificationOption customises a NotificationService.
type NotificationOption func(*NotificationService)

// WithNotificationClock overrides the time source. Intended for tests.
func WithNotificationClock(now func() time.Time) NotificationOption {
	return func(n *NotificationService) { n.now = now }
}

// WithDeduper enables duplicate-delivery suppression for push events.
func WithDeduper(d ports.EventDeduper) NotificationOption {
	return func(n *NotificationService) { n.dedup = d }
}

// NewNotificationService creates a service over the upstream history API and
// a push source. Either may be nil when the corresponding feature is unused.
func NewNotificationService(api ports.NotificationAPI, source ports.PushSource, log zerolog.Logger, opts ...NotificationOption) *NotificationService {
	n := &NotificationService{
		api:    api,
		source: source,
		log:    log,
		now:    time.Now,
		subs:   make(map[int]chan domain.Notification),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Refresh replaces the local history with the upstream's.
func (n *NotificationService) Refresh(ctx context.Context) error {
	if n.api == nil {
		return domain.ErrNoUpstream
	}
	items, err := n.api.List(ctx)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.items = items
	n.mu.Unlock()
	return nil
}

// Notifications returns a copy of the local history, newest first.
func (n *NotificationService) Notifications() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.items...)
}

// UnreadCount counts notifications without a read timestamp.
func (n *NotificationService) UnreadCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, item := range n.items {
		if !item.Read() {
			count++
		}
	}
	return count
}

// MarkRead sets the read timestamp locally and reports it to the upstream.
func (n *NotificationService) MarkRead(ctx context.Context, id string) error {
	if n.api != nil {
		if err := n.api.MarkRead(ctx, id); err != nil {
			return err
		}
	}

	now := n.now()
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.items {
		if n.items[i].ID == id && n.items[i].ReadAt == nil {
			n.items[i].ReadAt = &now
		}
	}
	return nil
}

// Add prepends a notification and fans it out to stream subscribers. Sends
// happen under the mutex so a channel can never be closed mid-send; they are
// non-blocking, so holding the lock is cheap.
func (n *NotificationService) Add(notification domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.items = append([]domain.Notification{notification}, n.items...)
	for _, ch := range n.subs {
		select {
		case ch <- notification:
		default:
			// Drop when a subscriber is slow to avoid blocking delivery.
		}
	}
}

// Subscribe registers a stream subscriber. The channel closes when ctx ends;
// removal and close share the mutex with Add, so delivery and teardown never
// race.
func (n *NotificationService) Subscribe(ctx context.Context) <-chan domain.Notification {
	ch := make(chan domain.Notification, 16)

	n.mu.Lock()
	id := n.nextSub
	n.nextSub++
	n.subs[id] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, id)
		close(ch)
		n.mu.Unlock()
	}()

	return ch
}

// StartListening opens the per-principal push channel and merges incoming
// events until StopListening or ctx end. A previous subscription is replaced.
func (n *NotificationService) StartListening(ctx context.Context, userID string) error {
	if n.source == nil {
		return domain.ErrNoUpstream
	}

	n.StopListening(ctx)

	sub, err := n.source.Subscribe(ctx, userChannel(userID))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", userChannel(userID), err)
	}

	done := make(chan struct{})
	n.mu.Lock()
	n.listener = sub
	n.done = done
	n.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				n.HandleEvent(ctx, ev)
			}
		}
	}()

	n.log.Info().Str("channel", userChannel(userID)).Msg("push listener started")
	return nil
}

// StopListening cancels the active push subscription, if any. Idempotent.
func (n *NotificationService) StopListening(ctx context.Context) {
	n.mu.Lock()
	sub := n.listener
	done := n.done
	n.listener = nil
	n.done = nil
	n.mu.Unlock()

	if sub == nil {
		return
	}
	if err := sub.Unsubscribe(ctx); err != nil {
		n.log.Warn().Err(err).Msg("push unsubscribe failed")
	}
	if done != nil {
		<-done
	}
}

// HandleEvent merges one push event into local state. Unknown event names
// are ignored; duplicate deliveries are dropped by id when a deduper is
// configured.
func (n *NotificationService) HandleEvent(ctx context.Context, ev ports.PushEvent) {
	notification, ok := n.decode(ev)
	if !ok {
		return
	}

	if n.dedup != nil {
		seen, err := n.dedup.Seen(ctx, notification.ID)
		if err != nil {
			n.log.Warn().Err(err).Msg("push dedup check failed")
		} else if seen {
			metrics.NotificationsDedupTotal.WithLabelValues("hit").Inc()
			return
		} else {
			metrics.NotificationsDedupTotal.WithLabelValues("miss").Inc()
			if err := n.dedup.Mark(ctx, notification.ID); err != nil {
				n.log.Warn().Err(err).Msg("push dedup mark failed")
			}
		}
	}

	metrics.NotificationsReceivedTotal.WithLabelValues(ev.Name).Inc()
	n.Add(notification)
}

// pushNotification mirrors the wire shape of notification.sent payloads.
// Servers either nest the notification or send it flat.
type pushNotification struct {
	Notification *pushNotification `json:"notification,omitempty"`
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Data         struct {
		Message string `json:"message"`
	} `json:"data"`
	CreatedAt string  `json:"created_at"`
	ReadAt    *string `json:"read_at"`
}

type formEvent struct {
	FormName string `json:"form_name"`
	UserName string `json:"user_name"`
}

func (n *NotificationService) decode(ev ports.PushEvent) (domain.Notification, bool) {
	switch ev.Name {
	case EventNotificationSent:
		var payload pushNotification
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			n.log.Warn().Err(err).Str("event", ev.Name).Msg("undecodable push payload")
			return domain.Notification{}, false
		}
		body := &payload
		if payload.Notification != nil {
			body = payload.Notification
		}

		notification := domain.Notification{
			ID:        body.ID,
			Severity:  body.Type,
			Message:   body.Data.Message,
			CreatedAt: parseTimestamp(body.CreatedAt, n.now()),
		}
		if body.ReadAt != nil {
			readAt := parseTimestamp(*body.ReadAt, n.now())
			notification.ReadAt = &readAt
		}
		n.fillDefaults(&notification)
		return notification, true

	// Older broadcasters send the bare class name instead of the dotted form.
	case EventFormAssigned, "FormAssigned":
		var payload formEvent
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			n.log.Warn().Err(err).Str("event", ev.Name).Msg("undecodable push payload")
			return domain.Notification{}, false
		}
		notification := domain.Notification{
			Message:   fmt.Sprintf("You were assigned the form %s", payload.FormName),
			CreatedAt: n.now(),
		}
		n.fillDefaults(&notification)
		return notification, true

	case EventFormSubmitted:
		var payload formEvent
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			n.log.Warn().Err(err).Str("event", ev.Name).Msg("undecodable push payload")
			return domain.Notification{}, false
		}
		message := fmt.Sprintf("The form %s received a new submission", payload.FormName)
		if payload.UserName != "" {
			message = fmt.Sprintf("%s submitted the form %s", payload.UserName, payload.FormName)
		}
		notification := domain.Notification{
			Message:   message,
			CreatedAt: n.now(),
		}
		n.fillDefaults(&notification)
		return notification, true

	default:
		n.log.Debug().Str("event", ev.Name).Msg("ignoring unknown push event")
		return domain.Notification{}, false
	}
}

// fillDefaults covers payloads arriving without an id or severity.
func (n *NotificationService) fillDefaults(notification *domain.Notification) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.Severity == "" {
		notification.Severity = domain.SeverityInfo
	}
	if notification.Message == "" {
		notification.Message = "New notification"
	}
}

// parseTimestamp parses an upstream RFC3339 timestamp, falling back to now.
func parseTimestamp(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts
	}
	return fallback
}
