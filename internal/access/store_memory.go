package access

import (
	"context"
	"sort"
	"sync"
	"time"

	id "medledger/pkg/domain"
)

// InMemoryStore keeps the ledger in process memory. One lock guards the whole
// mapping, reproducing the single-writer guarantee the core logic assumes.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[id.Identity]map[id.Identity]Grant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[id.Identity]map[id.Identity]Grant)}
}

func (s *InMemoryStore) Set(_ context.Context, owner, grantee id.Identity, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cells, ok := s.grants[owner]
	if !ok {
		cells = make(map[id.Identity]Grant)
		s.grants[owner] = cells
	}
	cells[grantee] = Grant{Provider: grantee, Granted: granted, UpdatedAt: time.Now().UTC()}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, owner, grantee id.Identity) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[owner][grantee].Granted, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, owner id.Identity) ([]Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grants := make([]Grant, 0, len(s.grants[owner]))
	for _, g := range s.grants[owner] {
		grants = append(grants, g)
	}
	sort.Slice(grants, func(i, j int) bool {
		return grants[i].Provider.String() < grants[j].Provider.String()
	})
	return grants, nil
}
