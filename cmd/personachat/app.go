package main

import (
	"errors"
	"fmt"

	"personachat/internal/archive"
	"personachat/internal/config"
	"personachat/internal/llm"
	"personachat/internal/logging"
	"personachat/internal/persona"
	"personachat/internal/session"
	"personachat/internal/usage"
)

// errArchiveDisabled is returned by commands that need the transcript archive.
var errArchiveDisabled = errors.New("transcript archive is disabled (set archive.enabled in the config)")

// newBuilder is swapped in tests.
var newBuilder = llm.NewBuilder

// app holds the collaborators shared by every command.
type app struct {
	cfg     *config.Config
	catalog *persona.Catalog
	build   llm.Builder
	usage   *usage.Tracker
	archive archive.Store
}

func newApp(c *config.Config) (*app, error) {
	catalog, err := persona.Resolve(c.Personas.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load personas: %w", err)
	}
	build, err := newBuilder(c.LLMOptions())
	if err != nil {
		return nil, err
	}
	tracker, err := usage.NewTracker(c.Usage.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage file: %w", err)
	}

	a := &app{cfg: c, catalog: catalog, build: build, usage: tracker}
	if c.Archive.Enabled {
		store, err := archive.New(c.ArchiveStoreConfig())
		if err != nil {
			_ = tracker.Close()
			return nil, fmt.Errorf("failed to open transcript archive: %w", err)
		}
		a.archive = store
	}
	logging.Get(logging.CategoryBoot).Info("app ready: %d personas, archive=%t", catalog.Len(), a.archive != nil)
	return a, nil
}

// startPersona is the configured default persona, or the catalog's first.
func (a *app) startPersona() (persona.Record, error) {
	if id := a.cfg.Personas.Default; id != "" {
		return a.catalog.Get(id)
	}
	return a.catalog.Default(), nil
}

func (a *app) sessionOptions() session.Options {
	return a.cfg.SessionOptions(a.usage)
}

func (a *app) newManager() *session.Manager {
	return session.NewManager(a.build, a.sessionOptions())
}

func (a *app) requireArchive() (archive.Store, error) {
	if a.archive == nil {
		return nil, errArchiveDisabled
	}
	return a.archive, nil
}

func (a *app) close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			logging.Get(logging.CategoryStore).Warn("closing archive: %v", err)
		}
	}
	if err := a.usage.Close(); err != nil {
		logging.Get(logging.CategoryUsage).Warn("saving usage: %v", err)
	}
}
