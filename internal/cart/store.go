package cart

import (
	"context"
	"sync"
)

// Store keeps one ledger per session key.
type Store interface {
	Load(ctx context.Context, key string) (*Ledger, error)
	Save(ctx context.Context, key string, l *Ledger) error
	Delete(ctx context.Context, key string) error
}

type MemoryStore struct {
	mu      sync.Mutex
	ledgers map[string]*Ledger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledgers: make(map[string]*Ledger)}
}

// Load returns a copy; callers must Save to persist changes.
func (s *MemoryStore) Load(_ context.Context, key string) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[key]
	if !ok {
		return NewLedger(), nil
	}
	return l.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, l *Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.IsEmpty() {
		delete(s.ledgers, key)
		return nil
	}
	s.ledgers[key] = l.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledgers, key)
	return nil
}
