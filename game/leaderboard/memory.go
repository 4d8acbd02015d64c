package leaderboard

import (
	"context"
	"sync"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

// MemoryStore keeps entries in memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add stores a new entry
func (s *MemoryStore) Add(ctx context.Context, e Entry) (Entry, error) {
	e, err := normalize(e)
	if err != nil {
		return e, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = nextID(s.entries)
	s.entries = append(s.entries, e)
	rank(s.entries)
	return e, nil
}

// Top returns the fastest entries
func (s *MemoryStore) Top(ctx context.Context, difficulty engine.Difficulty, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return top(s.entries, difficulty, limit), nil
}

// All returns every entry in rank order
func (s *MemoryStore) All(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...), nil
}
