package catalogue

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// TypeCount represents a count by type
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// CachedStats holds the cached catalogue statistics
type CachedStats struct {
	LoadedAt      string      `json:"loadedAt"`
	Source        string      `json:"source"`
	Count         int         `json:"count"`
	Skipped       int         `json:"skipped"`
	Dated         int         `json:"dated"`
	EarliestYear  int         `json:"earliestYear,omitempty"`
	LatestYear    int         `json:"latestYear,omitempty"`
	Fundamenta    int         `json:"fundamenta"`
	Persons       int         `json:"persons"`
	Places        int         `json:"places"`
	Shelfmarks    int         `json:"shelfmarks"`
	PhysicalTypes []TypeCount `json:"physicalTypes"`
	Functions     []TypeCount `json:"functions"`
}

// statsCache holds the singleton instance
type statsCache struct {
	mu    sync.RWMutex
	stats *CachedStats
}

var cache = &statsCache{}

// GetCachedStats returns the cached stats if available, nil otherwise
func GetCachedStats() *CachedStats {
	if !cache.mu.TryRLock() {
		return nil
	}
	defer cache.mu.RUnlock()

	return cache.stats
}

// ComputeAndCacheStats computes the stats of c and stores them in cache
func ComputeAndCacheStats(c *Catalogue, source string, loadedAt time.Time, force bool) *CachedStats {
	if c == nil {
		return nil
	}
	if force {
		cache.mu.Lock()
	} else {
		if !cache.mu.TryLock() {
			// Another computation is in progress
			return nil
		}
	}
	defer cache.mu.Unlock()

	stats := &CachedStats{
		LoadedAt: loadedAt.Format(time.RFC3339),
		Source:   source,
		Count:    c.Len(),
		Skipped:  c.Skipped(),
		Persons:  len(c.Persons()),
		Places:   len(c.Places()),
	}

	physical := map[string]int{}
	functions := map[string]int{}
	for _, r := range c.records {
		if year, ok := r.EarliestYear(); ok {
			if stats.Dated == 0 || year < stats.EarliestYear {
				stats.EarliestYear = year
			}
			if stats.Dated == 0 || year > stats.LatestYear {
				stats.LatestYear = year
			}
			stats.Dated++
		}
		if r.IsFundamenta() {
			stats.Fundamenta++
		}
		t := r.PhysicalType
		if t == "" {
			t = "unknown"
		}
		physical[t]++
		for _, f := range r.FunctionLabels() {
			functions[f]++
		}
	}
	for _, g := range c.ShelfmarkGroups() {
		stats.Shelfmarks += len(g.Labels)
	}
	stats.PhysicalTypes = typeCounts(physical)
	stats.Functions = typeCounts(functions)

	cache.stats = stats
	return cache.stats
}

// InvalidateStatsCache marks the cache as invalid so it will be recomputed on next access
func InvalidateStatsCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.stats = nil
}

// HasCachedStats returns whether stats are currently cached
func HasCachedStats() bool {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return cache.stats != nil
}

func typeCounts(m map[string]int) []TypeCount {
	out := make([]TypeCount, 0, len(m))
	for k, v := range m {
		out = append(out, TypeCount{Type: k, Count: v})
	}
	slices.SortFunc(out, func(a, b TypeCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Type, b.Type)
	})
	return out
}
