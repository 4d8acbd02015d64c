package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
)

// FileStore keeps entries in a JSON file. The file is re-read on every call so
// several processes can share it; writes go through a temporary file and a rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file store at path, creating its directory if needed
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create leaderboard directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Add stores a new entry
func (s *FileStore) Add(ctx context.Context, e Entry) (Entry, error) {
	e, err := normalize(e)
	if err != nil {
		return e, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return e, err
	}

	e.ID = nextID(entries)
	entries = append(entries, e)
	rank(entries)

	if err := s.save(entries); err != nil {
		return e, err
	}
	return e, nil
}

// Top returns the fastest entries
func (s *FileStore) Top(ctx context.Context, difficulty engine.Difficulty, limit int) ([]Entry, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return top(entries, difficulty, limit), nil
}

// All returns every entry in rank order
func (s *FileStore) All(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	rank(entries)
	return entries, nil
}

func (s *FileStore) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard: %w", err)
	}
	return entries, nil
}

func (s *FileStore) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write leaderboard file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace leaderboard file: %w", err)
	}
	return nil
}
