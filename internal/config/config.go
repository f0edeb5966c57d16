package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"personachat/internal/archive"
	"personachat/internal/llm"
	"personachat/internal/session"
)

// Config holds all personachat configuration.
type Config struct {
	// LLM provider connection
	LLM LLMConfig `yaml:"llm"`

	// Default generation parameters for new chats
	Generation llm.GenerationConfig `yaml:"generation"`

	// Conversation memory strategy
	Memory MemoryConfig `yaml:"memory"`

	// Persona catalog source
	Personas PersonasConfig `yaml:"personas"`

	// Transcript archive
	Archive ArchiveConfig `yaml:"archive"`

	// Token accounting
	Usage UsageConfig `yaml:"usage"`

	// HTTP API
	Server ServerConfig `yaml:"server"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home := stateDir()
	return &Config{
		LLM: LLMConfig{
			Provider: string(llm.ProviderGemini),
			Timeout:  "60s",
		},

		Generation: llm.DefaultGenerationConfig(),

		Memory: MemoryConfig{
			Mode:          string(session.ModeStateful),
			ContextWindow: session.DefaultContextWindow,
		},

		Archive: ArchiveConfig{
			Enabled:     true,
			Type:        string(archive.StoreTypeSQLite),
			Path:        filepath.Join(home, "transcripts.db"),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "personachat:transcript:",
			TTL:         "0s",
		},

		Usage: UsageConfig{
			File: filepath.Join(home, "usage.json"),
		},

		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			SessionIdle: "30m",
		},

		UI: UIConfig{
			Theme: "dark",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(home, "personachat.log"),
		},
	}
}

// stateDir is ~/.personachat, or a relative .personachat when the home
// directory is unknown.
func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".personachat"
	}
	return filepath.Join(home, ".personachat")
}

// DefaultConfigPath returns ~/.personachat/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(stateDir(), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file. The file may hold an API key, so
// it is written owner-only.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// API key from environment (later entries win)
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = string(llm.ProviderOpenAI)
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = string(llm.ProviderGemini)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = string(llm.ProviderGemini)
	}

	if model := os.Getenv("PERSONACHAT_MODEL"); model != "" {
		c.Generation.Model = model
	}
	if path := os.Getenv("PERSONACHAT_ARCHIVE"); path != "" {
		c.Archive.Path = path
	}
}

// GetLLMTimeout returns the per-request timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetArchiveTTL returns the redis entry expiry. Zero keeps entries forever.
func (c *Config) GetArchiveTTL() time.Duration {
	d, err := time.ParseDuration(c.Archive.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetSessionIdle returns the browser session idle limit for the HTTP API.
// A zero or negative setting disables expiry and is returned as -1.
func (c *Config) GetSessionIdle() time.Duration {
	if c.Server.SessionIdle == "" {
		return 30 * time.Minute
	}
	d, err := time.ParseDuration(c.Server.SessionIdle)
	if err != nil {
		return 30 * time.Minute
	}
	if d <= 0 {
		return -1
	}
	return d
}

// Validate validates the configuration. A missing API key is not an error:
// the UI asks for one.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range llm.ValidProviders {
		if c.LLM.Provider == string(p) {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, llm.ValidProviders)
	}

	if c.LLM.Timeout != "" {
		if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
			return fmt.Errorf("invalid llm.timeout %q: %w", c.LLM.Timeout, err)
		}
	}

	if err := c.Generation.Validate(); err != nil {
		return fmt.Errorf("invalid generation config: %w", err)
	}

	if _, err := session.ParseMode(c.Memory.Mode); err != nil {
		return err
	}
	if c.Memory.ContextWindow < 0 {
		return fmt.Errorf("memory.context_window must not be negative")
	}

	if c.Server.SessionIdle != "" {
		if _, err := time.ParseDuration(c.Server.SessionIdle); err != nil {
			return fmt.Errorf("invalid server.session_idle %q: %w", c.Server.SessionIdle, err)
		}
	}

	if c.Archive.Enabled {
		switch archive.StoreType(strings.ToLower(c.Archive.Type)) {
		case archive.StoreTypeSQLite, archive.StoreTypeRedis, archive.StoreTypeMemory, "":
		default:
			return fmt.Errorf("invalid archive type: %s", c.Archive.Type)
		}
	}

	return nil
}
