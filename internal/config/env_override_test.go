package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_LLM(t *testing.T) {
	t.Run("OPENAI_API_KEY sets openai provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "oa-key", cfg.LLM.APIKey)
		assert.Equal(t, "openai", cfg.LLM.Provider)
	})

	t.Run("GOOGLE_API_KEY sets gemini provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "g-key")

		cfg := &Config{LLM: LLMConfig{Provider: "openai"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "g-key", cfg.LLM.APIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
	})

	t.Run("Precedence: GEMINI over GOOGLE over OPENAI", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GOOGLE_API_KEY", "g-key")
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gm-key", cfg.LLM.APIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
	})

	t.Run("No env keeps file values", func(t *testing.T) {
		clearEnv(t)

		cfg := &Config{LLM: LLMConfig{Provider: "openai", APIKey: "file-key"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "file-key", cfg.LLM.APIKey)
		assert.Equal(t, "openai", cfg.LLM.Provider)
	})
}

func TestEnvOverrides_ModelAndArchive(t *testing.T) {
	clearEnv(t)
	t.Setenv("PERSONACHAT_MODEL", "gemini-2.5-flash")
	t.Setenv("PERSONACHAT_ARCHIVE", "/tmp/archive.db")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "gemini-2.5-flash", cfg.Generation.Model)
	assert.Equal(t, "/tmp/archive.db", cfg.Archive.Path)
}
