package sync

import (
	"sync"
	"time"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
)

// SyncStats holds the state of the catalogue load
type SyncStats struct {
	mu       sync.RWMutex
	running  bool
	source   string
	records  int
	skipped  int
	loadedAt *time.Time
	err      string
}

// Status is a snapshot of SyncStats
type Status struct {
	IsRunning bool       `json:"isRunning"`
	IsLoaded  bool       `json:"isLoaded"`
	Source    string     `json:"source"`
	Records   int        `json:"records"`
	Skipped   int        `json:"skipped"`
	LoadedAt  *time.Time `json:"loadedAt,omitempty"`
	Error     string     `json:"error,omitempty"`
}

var stats = &SyncStats{}

// GetStats returns a snapshot of the current load stats
func GetStats() Status {
	return stats.Status()
}

// GetStatsInstance returns the stats instance for updating
func GetStatsInstance() *SyncStats {
	return stats
}

// Status returns a snapshot of s
func (s *SyncStats) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		IsRunning: s.running,
		IsLoaded:  s.loadedAt != nil,
		Source:    s.source,
		Records:   s.records,
		Skipped:   s.skipped,
		LoadedAt:  s.loadedAt,
		Error:     s.err,
	}
}

// StartSync marks a load of source as running. It fails with
// ErrAlreadyRunning while another load is in progress.
func (s *SyncStats) StartSync(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.source = source
	s.err = ""
	return nil
}

// EndSync marks the load as completed and refreshes the stats cache. A failed
// load keeps the previously loaded catalogue figures.
func (s *SyncStats) EndSync(c *catalogue.Catalogue, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if err != nil {
		s.err = err.Error()
		return
	}

	now := time.Now().UTC()
	s.loadedAt = &now
	s.records = c.Len()
	s.skipped = c.Skipped()

	catalogue.ComputeAndCacheStats(c, s.source, now, true)
}
