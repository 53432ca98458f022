package outcome

import (
	"context"
	"sync"
)

// MemoryStore holds the merged view in-process. State does not survive a
// restart; the gateway remains the source of truth via the poll path.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[string]Outcome
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Outcome)}
}

func (s *MemoryStore) Apply(_ context.Context, obs Outcome) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := Merge(s.byID[obs.TransactionID], obs)
	s.byID[obs.TransactionID] = merged
	return merged, nil
}

func (s *MemoryStore) Get(_ context.Context, transactionID string) (Outcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[transactionID]
	return o, ok, nil
}
