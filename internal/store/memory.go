package store

import (
	"errors"
	"sync"
	"time"

	"weather-collector/internal/collector"
)

// ErrNotFound is returned when no completed run is available yet.
var ErrNotFound = errors.New("no collection runs recorded")

// RunStore is a concurrency-safe, bounded in-memory history of completed
// collection runs, retained so the daemon's status API can serve them.
type RunStore struct {
	mu sync.RWMutex

	runs []*collector.RunResult

	// retention configuration
	maxRuns int           // max number of retained runs (<= 0 means unlimited)
	maxAge  time.Duration // max age of retained runs (0 means unlimited)
}

func NewRunStore(maxRuns int, maxAge time.Duration) *RunStore {
	return &RunStore{
		maxRuns: maxRuns,
		maxAge:  maxAge,
	}
}

// Save appends a completed run and enforces retention.
func (s *RunStore) Save(run *collector.RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)

	// Enforce retention by count.
	if s.maxRuns > 0 && len(s.runs) > s.maxRuns {
		over := len(s.runs) - s.maxRuns
		s.runs = s.runs[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().UTC().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].Stats.EndedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.runs = s.runs[i:]
		}
	}
}

// Latest returns the most recent completed run.
func (s *RunStore) Latest() (*collector.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return nil, ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// Recent returns up to limit runs, newest first.
func (s *RunStore) Recent(limit int) []*collector.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}

	out := make([]*collector.RunResult, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out
}
