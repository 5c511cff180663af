package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"cerebunit/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	scores      map[string]model.ScoreRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.scores = make(map[string]model.ScoreRecord)
	return nil
}

func (s *MemoryStore) SaveScore(_ context.Context, record model.ScoreRecord) error {
	if record.ID == "" {
		return errors.New("score id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.scores[record.ID] = record
	return nil
}

func (s *MemoryStore) GetScore(_ context.Context, id string) (model.ScoreRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.scores[id]
	return record, ok, nil
}

func (s *MemoryStore) ListScores(_ context.Context, filter ScoreFilter) ([]model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.ScoreRecord, 0, len(s.scores))
	for _, record := range s.scores {
		if filter.matches(record) {
			records = append(records, record)
		}
	}
	sortNewestFirst(records)
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.scores = make(map[string]model.ScoreRecord)
	return nil
}

func sortNewestFirst(records []model.ScoreRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAtUTC.Equal(records[j].CreatedAtUTC) {
			return records[i].CreatedAtUTC.After(records[j].CreatedAtUTC)
		}
		return records[i].ID < records[j].ID
	})
}
