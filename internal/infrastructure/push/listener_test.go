package push

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/formdesk/dashboard-gateway/internal/core/ports"
)

func newTestListener(t *testing.T) (*Listener, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewListener(client, zerolog.Nop()), mr
}

func waitForEvent(t *testing.T, events <-chan ports.PushEvent) ports.PushEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatalf("events channel closed unexpectedly")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for push event")
		return ports.PushEvent{}
	}
}

func TestListener_Subscribe(t *testing.T) {
	listener, mr := newTestListener(t)

	sub, err := listener.Subscribe(context.Background(), "user.u-1")
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer sub.Unsubscribe(context.Background())

	mr.Publish("user.u-1", `{"event":"notification.sent","data":{"id":"n-1"}}`)

	ev := waitForEvent(t, sub.Events())
	if ev.Name != "notification.sent" {
		t.Fatalf("unexpected event name: %q", ev.Name)
	}
	if string(ev.Payload) != `{"id":"n-1"}` {
		t.Fatalf("unexpected payload: %s", ev.Payload)
	}
}

func TestListener_SkipsUndecodableMessages(t *testing.T) {
	listener, mr := newTestListener(t)

	sub, err := listener.Subscribe(context.Background(), "user.u-1")
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer sub.Unsubscribe(context.Background())

	mr.Publish("user.u-1", "not json")
	mr.Publish("user.u-1", `{"data":{}}`) // missing event name
	mr.Publish("user.u-1", `{"event":"form.assigned","data":{"form_name":"Survey"}}`)

	ev := waitForEvent(t, sub.Events())
	if ev.Name != "form.assigned" {
		t.Fatalf("bad messages must be skipped, got %q", ev.Name)
	}
}

func TestListener_Unsubscribe(t *testing.T) {
	listener, _ := newTestListener(t)

	sub, err := listener.Subscribe(context.Background(), "user.u-1")
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	if err := sub.Unsubscribe(context.Background()); err != nil {
		t.Fatalf("Unsubscribe returned error: %v", err)
	}

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatalf("expected closed events channel after unsubscribe")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for events channel to close")
	}
}
