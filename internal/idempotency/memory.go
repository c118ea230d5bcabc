// Package idempotency deduplicates webhook deliveries keyed by provider
// transaction id. Providers deliver at least once; applying the same
// authenticated event twice must not double-mutate downstream state.
package idempotency

import (
	"context"
	"sync"
)

// MemoryStore is a process-local EventStore. Suitable for tests and
// single-instance deployments.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// MarkProcessed returns true exactly once per key.
func (s *MemoryStore) MarkProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false, nil
	}
	s.seen[key] = struct{}{}
	return true, nil
}
