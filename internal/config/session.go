package config

import (
	"personachat/internal/archive"
	"personachat/internal/session"
	"personachat/internal/usage"
)

// MemoryConfig selects how conversation history reaches the model.
type MemoryConfig struct {
	Mode          string `yaml:"mode"`           // stateful_session, reconstructed_context
	ContextWindow int    `yaml:"context_window"` // turns replayed in reconstructed_context mode
}

// PersonasConfig selects the persona catalog.
type PersonasConfig struct {
	CatalogFile string `yaml:"catalog_file,omitempty"` // empty uses the built-in catalog
	Default     string `yaml:"default,omitempty"`      // persona id opened at startup
}

// ArchiveConfig configures the transcript archive.
type ArchiveConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Type        string `yaml:"type"` // sqlite, redis, memory
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	TTL         string `yaml:"ttl"`
}

// UsageConfig configures token accounting.
type UsageConfig struct {
	File string `yaml:"file"` // empty keeps usage in memory
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	SessionIdle string `yaml:"session_idle"` // browser sessions unused this long are dropped; "0s" keeps them
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // dark, light
}

// SessionOptions builds session manager options. tracker may be nil.
func (c *Config) SessionOptions(tracker *usage.Tracker) session.Options {
	mode, err := session.ParseMode(c.Memory.Mode)
	if err != nil {
		mode = session.ModeStateful
	}
	return session.Options{Mode: mode, ContextWindow: c.Memory.ContextWindow, Usage: tracker}
}

// ArchiveStoreConfig converts the archive section for archive.New.
func (c *Config) ArchiveStoreConfig() archive.Config {
	return archive.Config{
		Type:        archive.StoreType(c.Archive.Type),
		Path:        c.Archive.Path,
		RedisAddr:   c.Archive.RedisAddr,
		RedisPrefix: c.Archive.RedisPrefix,
		TTL:         c.GetArchiveTTL(),
	}
}
