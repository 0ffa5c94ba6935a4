package record

import (
	"context"
	"sync"

	id "medledger/pkg/domain"
)

// InMemoryStore keeps records in process memory. One lock guards the whole
// mapping, reproducing the single-writer guarantee the core logic assumes.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.Identity]PatientRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.Identity]PatientRecord)}
}

func (s *InMemoryStore) Save(_ context.Context, owner id.Identity, rec PatientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[owner] = rec
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, owner id.Identity) (PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[owner]; ok {
		return rec, nil
	}
	return PatientRecord{}, ErrNotFound
}
