package cache

import (
	"sync"
	"time"

	"agro-collector/entities"
)

// RunRecord is one collector invocation as seen by the service.
type RunRecord struct {
	ID         string              `json:"id"`
	Trigger    string              `json:"trigger"` // http | schedule | cli
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Report     *entities.RunReport `json:"report,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// RunCache keeps the most recent collector runs in memory, newest last.
type RunCache struct {
	mu    sync.RWMutex
	runs  []RunRecord
	limit int
	total int
}

func NewRunCache(limit int) *RunCache {
	if limit <= 0 {
		limit = 1
	}
	return &RunCache{
		runs:  make([]RunRecord, 0, limit),
		limit: limit,
	}
}

// Add stores a run, evicting the oldest one when the cache is full
func (rc *RunCache) Add(run RunRecord) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if len(rc.runs) == rc.limit {
		copy(rc.runs, rc.runs[1:])
		rc.runs = rc.runs[:len(rc.runs)-1]
	}
	rc.runs = append(rc.runs, run)
	rc.total++
}

// Latest returns the most recent run
func (rc *RunCache) Latest() (RunRecord, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if len(rc.runs) == 0 {
		return RunRecord{}, false
	}
	return rc.runs[len(rc.runs)-1], true
}

// List returns a copy of the cached runs, newest first
func (rc *RunCache) List() []RunRecord {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	out := make([]RunRecord, 0, len(rc.runs))
	for i := len(rc.runs) - 1; i >= 0; i-- {
		out = append(out, rc.runs[i])
	}
	return out
}

// GetCacheStats returns statistics about the cached runs
func (rc *RunCache) GetCacheStats() map[string]interface{} {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	stats := map[string]interface{}{
		"total_runs":  rc.total,
		"cached_runs": len(rc.runs),
		"limit":       rc.limit,
	}

	if len(rc.runs) > 0 {
		last := rc.runs[len(rc.runs)-1]
		stats["last_run_at"] = last.StartedAt
		stats["last_run_duration_ms"] = last.FinishedAt.Sub(last.StartedAt).Milliseconds()
		if last.Report != nil {
			stats["last_run_sensors"] = len(last.Report.Results)
			stats["last_run_failures"] = last.Report.Failed()
		}
		if last.Error != "" {
			stats["last_run_error"] = last.Error
		}
	}
	return stats
}

// ClearCache drops all cached runs; the total counter is kept.
func (rc *RunCache) ClearCache() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.runs = make([]RunRecord, 0, rc.limit)
}
