// Package memory implements the ephemeral persistence scope: a process-local
// key-value area that vanishes when the process exits, the counterpart of the
// redis-backed remembered scope.
package memory

import (
	"context"
	"sync"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

// Scope is an in-memory key-value scope. Safe for concurrent use.
type Scope struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewScope creates an empty Scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]string)}
}

// Get returns the stored value, or domain.ErrKeyNotFound for absent keys.
func (s *Scope) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

// Set stores a value.
func (s *Scope) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (s *Scope) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
