// Package storage defines the key-value side channel the submission
// orchestrator uses to carry state across the external checkout redirect.
package storage

import (
	"context"
	"sync"
)

// KeyValue is a durable string store. Implementations must treat Set as an
// idempotent upsert of a single key.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process KeyValue, used when no database is configured and
// in tests.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Prefixed namespaces every key of an underlying store. The wizard uses it to
// model the session-scoped copy of client state alongside the shared one.
type Prefixed struct {
	inner  KeyValue
	prefix string
}

// NewPrefixed wraps inner so every key is stored under prefix+key.
func NewPrefixed(inner KeyValue, prefix string) *Prefixed {
	return &Prefixed{inner: inner, prefix: prefix}
}

func (s *Prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Prefixed) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *Prefixed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}
