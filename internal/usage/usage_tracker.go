// Package usage aggregates the token counts providers report for each reply.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"personachat/internal/logging"
)

const dataVersion = "1.0"

type sessionKey struct{}

type sessionInfo struct {
	personaID string
	sessionID string
}

// Tracker records token usage in memory and optionally persists it as JSON.
type Tracker struct {
	mu            sync.Mutex
	data          UsageData
	filePath      string
	saveDelay     time.Duration
	autoSaveTimer *time.Timer
}

// NewTracker creates a tracker. An empty filePath keeps usage in memory only;
// otherwise existing data is loaded and changes are saved after a short delay.
func NewTracker(filePath string) (*Tracker, error) {
	t := &Tracker{
		filePath:  filePath,
		saveDelay: 5 * time.Second,
		data:      UsageData{Version: dataVersion, Aggregate: newAggregatedStats()},
	}
	if filePath == "" {
		return t, nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create usage dir: %w", err)
	}
	if err := t.Load(); err != nil {
		logging.Get(logging.CategoryUsage).Warn("ignoring unreadable usage file %s: %v", filePath, err)
	}
	return t, nil
}

// Load reads the usage data from disk.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	loaded := UsageData{Aggregate: newAggregatedStats()}
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	ensureMaps(&loaded.Aggregate)
	t.data = loaded
	return nil
}

func ensureMaps(a *AggregatedStats) {
	if a.ByProvider == nil {
		a.ByProvider = make(map[string]TokenCounts)
	}
	if a.ByModel == nil {
		a.ByModel = make(map[string]TokenCounts)
	}
	if a.ByPersona == nil {
		a.ByPersona = make(map[string]TokenCounts)
	}
	if a.BySession == nil {
		a.BySession = make(map[string]TokenCounts)
	}
}

// Save writes the usage data to disk. It is a no-op for in-memory trackers.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	if t.filePath == "" {
		return nil
	}
	t.data.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, data, 0644)
}

// Track records one reply's usage. Persona and session come from ctx, see
// WithSession.
func (t *Tracker) Track(ctx context.Context, model, provider string, input, output int) {
	info, _ := ctx.Value(sessionKey{}).(sessionInfo)
	if info.personaID == "" {
		info.personaID = "unknown"
	}
	if info.sessionID == "" {
		info.sessionID = "unknown"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	agg := &t.data.Aggregate
	agg.Requests++
	agg.Total.Add(input, output)
	addToMap(agg.ByProvider, provider, input, output)
	addToMap(agg.ByModel, model, input, output)
	addToMap(agg.ByPersona, info.personaID, input, output)
	addToMap(agg.BySession, info.sessionID, input, output)

	logging.Get(logging.CategoryUsage).Debug("tracked %d/%d tokens model=%s persona=%s", input, output, model, info.personaID)

	if t.filePath != "" && t.autoSaveTimer == nil {
		t.autoSaveTimer = time.AfterFunc(t.saveDelay, func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.autoSaveTimer = nil
			if err := t.saveLocked(); err != nil {
				logging.Get(logging.CategoryUsage).Error("autosave failed: %v", err)
			}
		})
	}
}

// Close cancels a pending autosave and flushes to disk.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.autoSaveTimer != nil {
		t.autoSaveTimer.Stop()
		t.autoSaveTimer = nil
	}
	return t.saveLocked()
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByProvider = copyTokenCountsMap(stats.ByProvider)
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByPersona = copyTokenCountsMap(stats.ByPersona)
	stats.BySession = copyTokenCountsMap(stats.BySession)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}

// WithSession tags ctx with the persona and session a tracked call belongs to.
func WithSession(ctx context.Context, personaID, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionInfo{personaID: personaID, sessionID: sessionID})
}
