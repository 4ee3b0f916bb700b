package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

// Scope is the remembered persistence scope: a key-value area that survives
// process restarts. Keys are namespaced under a prefix so several gateways
// can share one Redis.
type Scope struct {
	client *redis.Client
	prefix string
}

// NewScope creates a Scope over an established client.
func NewScope(client *redis.Client, prefix string) *Scope {
	if prefix == "" {
		prefix = "session"
	}
	return &Scope{client: client, prefix: prefix}
}

// Get returns the stored value, or domain.ErrKeyNotFound for absent keys.
func (s *Scope) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("scope get %s: %w", key, err)
	}
	return value, nil
}

// Set stores a value with no expiry; session lifetime is tracked by the
// store, not the backing keys.
func (s *Scope) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("scope set %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (s *Scope) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = s.key(k)
	}
	if err := s.client.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("scope delete: %w", err)
	}
	return nil
}

func (s *Scope) key(key string) string {
	return s.prefix + ":" + key
}
