package ontology

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepo is an in-process Store, used for fixtures and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryRepo creates a store holding recs.
func NewMemoryRepo(recs ...Record) *MemoryRepo {
	m := &MemoryRepo{records: make(map[string]Record, len(recs))}
	for _, r := range recs {
		m.records[r.Key] = r
	}
	return m
}

func (m *MemoryRepo) GetByKey(_ context.Context, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return &r, nil
}

func (m *MemoryRepo) Upsert(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key] = *rec
	return nil
}
