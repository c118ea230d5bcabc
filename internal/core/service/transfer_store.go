package service

import (
	"sync"

	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

// MemoryTransferStore keeps payout transfers between the asynchronous steps
// of their lifecycle. Safe for concurrent use.
type MemoryTransferStore struct {
	mu             sync.RWMutex
	byID           map[string]*domain.Transfer
	byIdempotency  map[string]string // idempotency key -> transfer id
}

// NewMemoryTransferStore creates an empty transfer store.
func NewMemoryTransferStore() *MemoryTransferStore {
	return &MemoryTransferStore{
		byID:          make(map[string]*domain.Transfer),
		byIdempotency: make(map[string]string),
	}
}

// Save stores or replaces the transfer.
func (s *MemoryTransferStore) Save(transfer *domain.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *transfer
	s.byID[transfer.ID] = &copied
	if transfer.IdempotencyKey != "" {
		s.byIdempotency[transfer.IdempotencyKey] = transfer.ID
	}
}

// Get returns a copy of the transfer with the given id.
func (s *MemoryTransferStore) Get(id string) (*domain.Transfer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	copied := *t
	return &copied, true
}

// GetByIdempotencyKey returns the transfer created with the given key.
func (s *MemoryTransferStore) GetByIdempotencyKey(key string) (*domain.Transfer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byIdempotency[key]
	if !ok {
		return nil, false
	}
	t, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	copied := *t
	return &copied, true
}

// GetByProviderReference resolves a transfer by the provider's transfer id.
// Provider ids are used as local ids, so this is an id lookup.
func (s *MemoryTransferStore) GetByProviderReference(ref string) (*domain.Transfer, bool) {
	return s.Get(ref)
}
