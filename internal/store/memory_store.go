// Package store keeps the latest refresh result in memory for the HTTP API.
package store

import (
	"context"
	"sync"

	"github.com/couchcryptid/covid-map-service/internal/domain"
)

// MemoryStore keeps a thread-safe snapshot of the dataset and its markers.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Replace swaps in a new snapshot. The markers slice is copied.
func (s *MemoryStore) Replace(snap domain.Snapshot) {
	markers := make([]domain.Marker, len(snap.Markers))
	copy(markers, snap.Markers)
	snap.Markers = markers

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

// LoadMarkers implements pipeline.MarkerSink.
func (s *MemoryStore) LoadMarkers(_ context.Context, snap domain.Snapshot) error {
	s.Replace(snap)
	return nil
}

// Markers returns a copy of the current markers.
func (s *MemoryStore) Markers() []domain.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Marker, len(s.snapshot.Markers))
	copy(result, s.snapshot.Markers)
	return result
}

// Country computes stats for a country from the current snapshot. It returns
// domain.ErrCountryNotFound when the dataset has no entry for the name,
// including before the first refresh.
func (s *MemoryStore) Country(name string) (domain.CountryStats, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	series, err := snap.Dataset.Lookup(name)
	if err != nil {
		return domain.CountryStats{}, err
	}
	return domain.BuildCountryStats(name, series, snap.Reference, snap.LookbackDays), nil
}
