package history

import (
	"context"
	"errors"
	"sync"
)

type MemoryStore struct {
	mu       sync.RWMutex
	episodes []Episode
	index    map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (s *MemoryStore) Init(context.Context) error { return nil }

func (s *MemoryStore) RecordEpisode(_ context.Context, e Episode) error {
	if e.ID == "" {
		return errors.New("episode id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[e.ID]; ok {
		s.episodes[i] = e
		return nil
	}
	s.index[e.ID] = len(s.episodes)
	s.episodes = append(s.episodes, e)
	return nil
}

func (s *MemoryStore) Episodes(_ context.Context, limit int) ([]Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from := 0
	if limit > 0 && len(s.episodes) > limit {
		from = len(s.episodes) - limit
	}
	return append([]Episode(nil), s.episodes[from:]...), nil
}

func (s *MemoryStore) Close() error { return nil }
