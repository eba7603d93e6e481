package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/cinefind/internal/counter"
)

// Snapshot is the latest trending data available to the UI.
type Snapshot struct {
	Trending            []counter.Entry
	HasTrending         bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline reports whether the counter backend failed on several refreshes in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the trending list. When err is non-nil the previous list is
// kept but the error is recorded for visibility.
func (s *Store) Update(trending []counter.Entry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Trending = cloneEntries(trending)
	s.snapshot.HasTrending = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Trending = cloneEntries(s.snapshot.Trending)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneEntries(items []counter.Entry) []counter.Entry {
	if len(items) == 0 {
		return nil
	}
	dup := make([]counter.Entry, len(items))
	copy(dup, items)
	return dup
}
