package config

import (
	"personachat/internal/llm"
)

// LLMConfig configures the model provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"` // OpenAI-compatible endpoint or Gemini proxy
	Timeout  string `yaml:"timeout"`
}

// LLMOptions returns the provider options for llm.NewBuilder.
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{
		Provider: llm.Provider(c.LLM.Provider),
		BaseURL:  c.LLM.BaseURL,
		Timeout:  c.GetLLMTimeout(),
	}
}
