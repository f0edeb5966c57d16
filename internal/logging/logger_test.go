package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, o Options) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core), o)
	t.Cleanup(func() { Use(zap.NewNop(), Options{}) })
	return logs
}

func TestGet_WritesUnderCategoryName(t *testing.T) {
	logs := observe(t, Options{DebugMode: true})

	Get(CategorySession).Info("primed %s", "luna")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "session", entries[0].LoggerName)
	assert.Equal(t, "primed luna", entries[0].Message)
}

func TestGet_DisabledCategoryIsSilent(t *testing.T) {
	logs := observe(t, Options{DebugMode: true, Categories: map[string]bool{"api": false}})

	Get(CategoryAPI).Error("should not appear")
	Get(CategoryStore).Info("should appear")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "store", logs.All()[0].LoggerName)
}

func TestWith_CarriesFields(t *testing.T) {
	logs := observe(t, Options{DebugMode: true})

	Get(CategoryServer).With("session_id", "abc").Warn("busy")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["session_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestStopWithThreshold_WarnsWhenSlow(t *testing.T) {
	logs := observe(t, Options{DebugMode: true})

	timer := StartTimer(CategoryAPI, "send")
	timer.start = time.Now().Add(-time.Second)
	timer.StopWithThreshold(10 * time.Millisecond)

	require.Len(t, logs.All(), 1)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestInitialize_DisabledIsNoop(t *testing.T) {
	require.NoError(t, Initialize(Options{DebugMode: false}))
	t.Cleanup(func() { Use(zap.NewNop(), Options{}) })

	// Must not panic or write anywhere.
	Get(CategoryBoot).Info("nothing")
}

func TestInitialize_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personachat.log")
	require.NoError(t, Initialize(Options{DebugMode: true, Level: "debug", Format: "json", File: path}))
	t.Cleanup(func() { Use(zap.NewNop(), Options{}) })

	Get(CategoryUsage).Info("tracked %d tokens", 42)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tracked 42 tokens")
	assert.Contains(t, string(data), `"logger":"usage"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}
