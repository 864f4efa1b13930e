// Package memory provides an in-process key/value store. Values do not
// survive a restart; it backs tests and the "memory" store driver.
package memory

import (
	"sync"

	domain "backoffice/console/internal/domain/session"
)

// Store is a mutex-guarded map.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ domain.KeyValueStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(keys ...string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *Store) Put(entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.data[k] = v
	}
	return nil
}

func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Len reports how many keys are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
