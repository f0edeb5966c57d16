package usage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTracker_TrackAggregates(t *testing.T) {
	tracker, err := NewTracker("")
	require.NoError(t, err)

	ctx := WithSession(context.Background(), "riku", "sess_1")
	tracker.Track(ctx, "gemini-2.0-flash", "gemini", 10, 5)
	tracker.Track(ctx, "gemini-2.0-flash", "gemini", 2, 3)
	tracker.Track(context.Background(), "gpt-4o-mini", "openai", 1, 1)

	stats := tracker.Stats()
	assert.Equal(t, TokenCounts{Input: 13, Output: 9, Total: 22}, stats.Total)
	assert.Equal(t, int64(3), stats.Requests)
	assert.Equal(t, int64(20), stats.ByProvider["gemini"].Total)
	assert.Equal(t, int64(20), stats.ByModel["gemini-2.0-flash"].Total)
	assert.Equal(t, int64(20), stats.ByPersona["riku"].Total)
	assert.Equal(t, int64(20), stats.BySession["sess_1"].Total)
	assert.Equal(t, int64(2), stats.BySession["unknown"].Total)
}

func TestTracker_StatsIsCopy(t *testing.T) {
	tracker, err := NewTracker("")
	require.NoError(t, err)
	tracker.Track(context.Background(), "m", "p", 1, 1)

	stats := tracker.Stats()
	stats.ByModel["m"] = TokenCounts{Total: 999}

	assert.Equal(t, int64(2), tracker.Stats().ByModel["m"].Total)
}

func TestTracker_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "usage.json")
	tracker, err := NewTracker(path)
	require.NoError(t, err)

	tracker.Track(WithSession(context.Background(), "luna", "s1"), "gemini-2.0-flash", "gemini", 7, 3)
	require.NoError(t, tracker.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var persisted UsageData
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, int64(10), persisted.Aggregate.Total.Total)
	assert.Equal(t, dataVersion, persisted.Version)

	reloaded, err := NewTracker(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), reloaded.Stats().ByPersona["luna"].Total)
}

func TestTracker_AutoSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	tracker, err := NewTracker(path)
	require.NoError(t, err)
	tracker.saveDelay = 10 * time.Millisecond

	tracker.Track(context.Background(), "m", "p", 1, 2)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, tracker.Close())
}

func TestTracker_CorruptFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	tracker, err := NewTracker(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tracker.Stats().Total.Total)
}
