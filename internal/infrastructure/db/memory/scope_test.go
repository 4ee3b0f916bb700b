package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

func TestScope_SetGetDelete(t *testing.T) {
	scope := NewScope()
	ctx := context.Background()

	if _, err := scope.Get(ctx, "authToken"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound on empty scope, got %v", err)
	}

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

	if err := scope.Delete(ctx, "authToken", "missing"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := scope.Get(ctx, "authToken"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}
