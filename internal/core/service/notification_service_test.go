package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
	"github.com/formdesk/dashboard-gateway/internal/core/ports"
)

type stubNotificationAPI struct {
	items     []domain.Notification
	listErr   error
	readCalls []string
	readErr   error
}

func (a *stubNotificationAPI) List(context.Context) ([]domain.Notification, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	return append([]domain.Notification(nil), a.items...), nil
}

func (a *stubNotificationAPI) MarkRead(_ context.Context, id string) error {
	a.readCalls = append(a.readCalls, id)
	return a.readErr
}

type stubSubscription struct {
	events       chan ports.PushEvent
	unsubscribed bool
}

func (s *stubSubscription) Events() <-chan ports.PushEvent { return s.events }

func (s *stubSubscription) Unsubscribe(context.Context) error {
	if !s.unsubscribed {
		s.unsubscribed = true
		close(s.events)
	}
	return nil
}

type stubPushSource struct {
	sub      *stubSubscription
	channels []string
	err      error
}

func (s *stubPushSource) Subscribe(_ context.Context, channel string) (ports.PushSubscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.channels = append(s.channels, channel)
	s.sub = &stubSubscription{events: make(chan ports.PushEvent, 8)}
	return s.sub, nil
}

type stubDeduper struct {
	seen map[string]bool
}

func newStubDeduper() *stubDeduper {
	return &stubDeduper{seen: make(map[string]bool)}
}

func (d *stubDeduper) Seen(_ context.Context, id string) (bool, error) {
	return d.seen[id], nil
}

func (d *stubDeduper) Mark(_ context.Context, id string) error {
	d.seen[id] = true
	return nil
}

func newTestNotifications(api ports.NotificationAPI, source ports.PushSource, opts ...NotificationOption) *NotificationService {
	return NewNotificationService(api, source, zerolog.Nop(), opts...)
}

func sentEvent(id, message string) ports.PushEvent {
	payload, _ := json.Marshal(map[string]any{
		"id":         id,
		"type":       "warning",
		"data":       map[string]string{"message": message},
		"created_at": "2026-02-01T10:00:00Z",
	})
	return ports.PushEvent{Name: EventNotificationSent, Payload: payload}
}

func TestNotificationService_Refresh(t *testing.T) {
	readAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	api := &stubNotificationAPI{items: []domain.Notification{
		{ID: "n-1", Severity: domain.SeverityInfo, Message: "first"},
		{ID: "n-2", Severity: domain.SeverityError, Message: "second", ReadAt: &readAt},
	}}
	svc := newTestNotifications(api, nil)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if got := len(svc.Notifications()); got != 2 {
		t.Fatalf("expected 2 notifications, got %d", got)
	}
	if got := svc.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}
}

func TestNotificationService_Refresh_Error(t *testing.T) {
	listErr := errors.New("upstream 500")
	svc := newTestNotifications(&stubNotificationAPI{listErr: listErr}, nil)
	if err := svc.Refresh(context.Background()); !errors.Is(err, listErr) {
		t.Fatalf("expected list error to propagate, got %v", err)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	api := &stubNotificationAPI{items: []domain.Notification{{ID: "n-1", Message: "hello"}}}
	svc := newTestNotifications(api, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if err := svc.MarkRead(context.Background(), "n-1"); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if len(api.readCalls) != 1 || api.readCalls[0] != "n-1" {
		t.Fatalf("expected upstream mark-read call, got %v", api.readCalls)
	}
	items := svc.Notifications()
	if !items[0].Read() {
		t.Fatalf("expected notification marked read locally")
	}
	if got := len(items); got != 1 {
		t.Fatalf("mark read must never delete, got %d items", got)
	}
}

func TestNotificationService_HandleEvent_NotificationSent(t *testing.T) {
	svc := newTestNotifications(nil, nil)
	svc.HandleEvent(context.Background(), sentEvent("n-9", "disk almost full"))

	items := svc.Notifications()
	if len(items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(items))
	}
	if items[0].ID != "n-9" || items[0].Severity != domain.SeverityWarning || items[0].Message != "disk almost full" {
		t.Fatalf("unexpected notification: %+v", items[0])
	}
}

func TestNotificationService_HandleEvent_NestedPayload(t *testing.T) {
	payload := []byte(`{"notification":{"id":"n-5","type":"error","data":{"message":"nested"},"created_at":"2026-02-01T10:00:00Z"}}`)
	svc := newTestNotifications(nil, nil)
	svc.HandleEvent(context.Background(), ports.PushEvent{Name: EventNotificationSent, Payload: payload})

	items := svc.Notifications()
	if len(items) != 1 || items[0].ID != "n-5" || items[0].Message != "nested" {
		t.Fatalf("expected nested payload decoded, got %+v", items)
	}
}

func TestNotificationService_HandleEvent_FormAssigned(t *testing.T) {
	payload := []byte(`{"form_name":"Onboarding"}`)
	for _, name := range []string{EventFormAssigned, "FormAssigned"} {
		svc := newTestNotifications(nil, nil)
		svc.HandleEvent(context.Background(), ports.PushEvent{Name: name, Payload: payload})

		items := svc.Notifications()
		if len(items) != 1 {
			t.Fatalf("%s: expected 1 notification, got %d", name, len(items))
		}
		if !strings.Contains(items[0].Message, "Onboarding") {
			t.Fatalf("%s: expected form name in message, got %q", name, items[0].Message)
		}
		if items[0].ID == "" {
			t.Fatalf("%s: expected generated id for payload without one", name)
		}
		if items[0].Severity != domain.SeverityInfo {
			t.Fatalf("%s: expected info severity default, got %q", name, items[0].Severity)
		}
	}
}

func TestNotificationService_HandleEvent_FormSubmitted(t *testing.T) {
	svc := newTestNotifications(nil, nil)
	svc.HandleEvent(context.Background(), ports.PushEvent{
		Name:    EventFormSubmitted,
		Payload: []byte(`{"form_name":"Survey","user_name":"Bob"}`),
	})
	svc.HandleEvent(context.Background(), ports.PushEvent{
		Name:    EventFormSubmitted,
		Payload: []byte(`{"form_name":"Survey"}`),
	})

	items := svc.Notifications()
	if len(items) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(items))
	}
	// Newest first.
	if !strings.Contains(items[1].Message, "Bob") {
		t.Fatalf("expected submitter name in message, got %q", items[1].Message)
	}
	if strings.Contains(items[0].Message, "Bob") {
		t.Fatalf("anonymous submission must not name a user, got %q", items[0].Message)
	}
}

func TestNotificationService_HandleEvent_UnknownIgnored(t *testing.T) {
	svc := newTestNotifications(nil, nil)
	svc.HandleEvent(context.Background(), ports.PushEvent{Name: "cache.flushed", Payload: []byte(`{}`)})
	if got := len(svc.Notifications()); got != 0 {
		t.Fatalf("unknown events must be ignored, got %d notifications", got)
	}
}

func TestNotificationService_HandleEvent_Dedup(t *testing.T) {
	svc := newTestNotifications(nil, nil, WithDeduper(newStubDeduper()))
	svc.HandleEvent(context.Background(), sentEvent("n-1", "once"))
	svc.HandleEvent(context.Background(), sentEvent("n-1", "once"))
	svc.HandleEvent(context.Background(), sentEvent("n-2", "twice"))

	if got := len(svc.Notifications()); got != 2 {
		t.Fatalf("expected duplicate delivery dropped, got %d notifications", got)
	}
}

func TestNotificationService_Subscribe_FanOut(t *testing.T) {
	svc := newTestNotifications(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := svc.Subscribe(ctx)
	svc.Add(domain.Notification{ID: "n-1", Message: "hello"})

	select {
	case n := <-events:
		if n.ID != "n-1" {
			t.Fatalf("unexpected notification: %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for fan-out")
	}

	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatalf("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for channel close")
	}
}

func TestNotificationService_AddDuringUnsubscribe(t *testing.T) {
	svc := newTestNotifications(nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			svc.Add(domain.Notification{ID: "n", Severity: domain.SeverityInfo, Message: "m"})
		}
	}()

	// Subscribers churning while deliveries are in flight must never crash
	// the fan-out.
	for i := 0; i < 500; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		svc.Subscribe(ctx)
		cancel()
	}
	<-done
}

func TestNotificationService_StartStopListening(t *testing.T) {
	source := &stubPushSource{}
	svc := newTestNotifications(nil, source)

	if err := svc.StartListening(context.Background(), "u-1"); err != nil {
		t.Fatalf("StartListening returned error: %v", err)
	}
	if len(source.channels) != 1 || source.channels[0] != "user.u-1" {
		t.Fatalf("expected subscription to user.u-1, got %v", source.channels)
	}

	source.sub.events <- sentEvent("n-1", "pushed")

	deadline := time.Now().Add(time.Second)
	for len(svc.Notifications()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for pushed event to merge")
		}
		time.Sleep(5 * time.Millisecond)
	}

	svc.StopListening(context.Background())
	if !source.sub.unsubscribed {
		t.Fatalf("expected subscription closed")
	}
	// Idempotent.
	svc.StopListening(context.Background())
}

func TestNotificationService_StartListening_ReplacesPrevious(t *testing.T) {
	source := &stubPushSource{}
	svc := newTestNotifications(nil, source)

	if err := svc.StartListening(context.Background(), "u-1"); err != nil {
		t.Fatalf("StartListening returned error: %v", err)
	}
	first := source.sub
	if err := svc.StartListening(context.Background(), "u-2"); err != nil {
		t.Fatalf("StartListening returned error: %v", err)
	}
	if !first.unsubscribed {
		t.Fatalf("expected the first subscription to be closed")
	}
	svc.StopListening(context.Background())
}

func TestNotificationService_StartListening_SubscribeError(t *testing.T) {
	source := &stubPushSource{err: errors.New("redis down")}
	svc := newTestNotifications(nil, source)
	if err := svc.StartListening(context.Background(), "u-1"); err == nil {
		t.Fatalf("expected subscribe error to propagate")
	}
}
