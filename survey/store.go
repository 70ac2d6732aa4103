package survey

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store hands out loaded tables, reading each archive at most once for the
// life of the process. Concurrent first requests for a path share one load.
// Failed loads are not remembered, so a later call retries.
type Store struct {
	mu     sync.Mutex
	tables map[string]*Table
	group  singleflight.Group
	load   func(string) (*Table, error)
}

// NewStore returns an empty Store backed by Load.
func NewStore() *Store {
	return &Store{
		tables: make(map[string]*Table),
		load:   Load,
	}
}

// Table returns the table for path, loading it on first use.
func (s *Store) Table(path string) (*Table, error) {
	key := filepath.Clean(path)
	if t := s.cached(key); t != nil {
		return t, nil
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		if t := s.cached(key); t != nil {
			return t, nil
		}
		t, err := s.load(key)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.tables[key] = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

func (s *Store) cached(key string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[key]
}
