package ports

import "context"

// Scope is a key-value persistence area with a defined survival duration.
// The remembered scope outlives the process; the ephemeral scope does not.
// Get returns domain.ErrKeyNotFound (wrapped or bare) for absent keys.
type Scope interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
