package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping after connect failed: %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	if _, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}
}

func TestScope_SetGetDelete(t *testing.T) {
	scope := NewScope(newTestClient(t), "session")
	ctx := context.Background()

	if err := scope.Set(ctx, "authToken", "tok-1"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	value, err := scope.Get(ctx, "authToken")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if value != "tok-1" {
		t.Fatalf("unexpected value: %q", value)
	}

	if err := scope.Delete(ctx, "authToken", "authUser"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := scope.Get(ctx, "authToken"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestScope_MissingKey(t *testing.T) {
	scope := NewScope(newTestClient(t), "session")
	if _, err := scope.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestScope_PrefixIsolation(t *testing.T) {
	client := newTestClient(t)
	a := NewScope(client, "gateway-a")
	b := NewScope(client, "gateway-b")
	ctx := context.Background()

	if err := a.Set(ctx, "authToken", "tok-a"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if _, err := b.Get(ctx, "authToken"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("prefixes must isolate gateways sharing one redis, got %v", err)
	}
}
