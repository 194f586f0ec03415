// Package prefs stores per-user cuisine preferences used by relevance
// scoring.
package prefs

import (
	"context"
	"sync"
)

// Store defines cuisine-preference storage. Preferences are replaced
// wholesale; there is no incremental add/remove.
type Store interface {
	// CuisinePreferences returns the cuisine IDs the user has opted into.
	CuisinePreferences(ctx context.Context, userID string) ([]string, error)

	// SetCuisinePreferences replaces the user's preference set.
	SetCuisinePreferences(ctx context.Context, userID string, cuisineIDs []string) error
}

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex.
type InMemoryStore struct {
	mu    sync.RWMutex
	prefs map[string][]string
}

// NewInMemoryStore creates a new in-memory preference store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		prefs: make(map[string][]string),
	}
}

// CuisinePreferences returns the cuisine IDs the user has opted into.
func (s *InMemoryStore) CuisinePreferences(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.prefs[userID]
	result := make([]string, len(stored))
	copy(result, stored)
	return result, nil
}

// SetCuisinePreferences replaces the user's preference set.
func (s *InMemoryStore) SetCuisinePreferences(ctx context.Context, userID string, cuisineIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]string, len(cuisineIDs))
	copy(stored, cuisineIDs)
	s.prefs[userID] = stored
	return nil
}
