// Package logging provides categorized structured logging for personachat.
// Each subsystem logs through its own category; all categories share one zap core.
// Until Initialize is called, or when debug mode is off, every logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategorySession Category = "session" // Session lifecycle: priming, rebuilds, sends
	CategoryAPI     Category = "api"     // Remote model calls
	CategoryPersona Category = "persona" // Catalog loading and lookups
	CategoryStore   Category = "store"   // Transcript archive operations
	CategoryUsage   Category = "usage"   // Token accounting
	CategoryServer  Category = "server"  // HTTP API
	CategoryUI      Category = "ui"      // Terminal UI events
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	DebugMode  bool
	Level      string // debug, info, warn, error
	Format     string // json, text
	File       string // empty means stderr
	Categories map[string]bool
}

// Logger is a category-scoped printf-style logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	opts    Options
	loggers = make(map[Category]*Logger)
)

// Initialize builds the shared zap logger from opts.
// With DebugMode false the call leaves logging disabled and returns nil.
func Initialize(o Options) error {
	if !o.DebugMode {
		Use(zap.NewNop(), o)
		return nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(o.Level))
	cfg.Sampling = nil
	if strings.EqualFold(o.Format, "text") || strings.EqualFold(o.Format, "console") {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
		cfg.OutputPaths = []string{o.File}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Use(l, o)

	Get(CategoryBoot).Info("logging initialized: level=%s format=%s file=%q", o.Level, o.Format, o.File)
	return nil
}

// Use installs l as the shared logger. Tests use it with an observer core.
func Use(l *zap.Logger, o Options) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	opts = o
	loggers = make(map[Category]*Logger)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsCategoryEnabled reports whether category is switched on.
// Categories absent from the filter are enabled.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if opts.Categories == nil {
		return true
	}
	enabled, ok := opts.Categories[string(category)]
	return !ok || enabled
}

// Get returns (or creates) the logger for category.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{
		category: category,
		sugar:    base.Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// Sync flushes buffered entries. Call at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a child logger carrying structured key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Category returns the logger's category.
func (l *Logger) Category() Category { return l.category }

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}

// Session logs to the session category
func Session(format string, args ...interface{}) { Get(CategorySession).Info(format, args...) }

// SessionDebug logs debug to the session category
func SessionDebug(format string, args ...interface{}) { Get(CategorySession).Debug(format, args...) }

// API logs to the api category
func API(format string, args ...interface{}) { Get(CategoryAPI).Info(format, args...) }

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }

// Store logs to the store category
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }
