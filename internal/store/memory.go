package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mvoronin/jobscout/internal/model"
)

// Ensure MemoryStore implements model.SettingsStore.
var _ model.SettingsStore = (*MemoryStore)(nil)

// MemoryStore is a map-based settings store. It backs the local chat mode
// and tests; nothing survives a restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[int64]model.Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]model.Settings)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (model.Settings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.records[userID]
	return settings, ok, nil
}

func (s *MemoryStore) Upsert(_ context.Context, userID int64, patch model.Patch) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, ok := s.records[userID]
	if !ok {
		base = model.DefaultSettings()
	}
	merged := patch.Apply(base)
	s.records[userID] = merged
	return merged, nil
}

func (s *MemoryStore) Users(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }
