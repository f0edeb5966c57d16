// Package llm wraps the hosted model APIs behind a small client/session
// contract: build a client from a GenerationConfig, open a chat session primed
// with persona turns, send text, get text back.
package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	"personachat/internal/transcript"
)

// Provider identifies a hosted model API.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ValidProviders lists all supported providers.
var ValidProviders = []Provider{ProviderGemini, ProviderOpenAI}

// KnownModels lists the model identifiers offered in pickers, per provider.
// Any other identifier is passed through to the API unchanged.
var KnownModels = map[Provider][]string{
	ProviderGemini: {"gemini-2.0-flash", "gemini-2.0-flash-lite", "gemini-2.5-flash", "gemini-2.5-pro", "gemini-1.5-flash", "gemini-1.5-pro"},
	ProviderOpenAI: {"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1"},
}

// Generation parameter bounds, matching the UI controls.
const (
	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinMaxTokens   = 50
	MaxMaxTokens   = 2048

	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// GenerationConfig parametrizes a client. Two configs are equal iff all
// three fields are equal.
type GenerationConfig struct {
	Model       string  `json:"model" yaml:"model"`
	Temperature float32 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

// DefaultGenerationConfig returns the defaults used when nothing is configured.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{Model: DefaultModel, Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
}

// Equal reports whether c and other would build identical clients.
func (c GenerationConfig) Equal(other GenerationConfig) bool {
	return c == other
}

// Clamp forces temperature and max tokens into their bounds, the way the UI
// controls do. An empty model becomes DefaultModel.
func (c GenerationConfig) Clamp() GenerationConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if math.IsNaN(float64(c.Temperature)) || c.Temperature < MinTemperature {
		c.Temperature = MinTemperature
	}
	if c.Temperature > MaxTemperature {
		c.Temperature = MaxTemperature
	}
	if c.MaxTokens < MinMaxTokens {
		c.MaxTokens = MinMaxTokens
	}
	if c.MaxTokens > MaxMaxTokens {
		c.MaxTokens = MaxMaxTokens
	}
	return c
}

// Validate reports the first out-of-range field.
func (c GenerationConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if math.IsNaN(float64(c.Temperature)) || c.Temperature < MinTemperature || c.Temperature > MaxTemperature {
		return fmt.Errorf("temperature %.2f out of range [%.1f, %.1f]", c.Temperature, MinTemperature, MaxTemperature)
	}
	if c.MaxTokens < MinMaxTokens || c.MaxTokens > MaxMaxTokens {
		return fmt.Errorf("max_tokens %d out of range [%d, %d]", c.MaxTokens, MinMaxTokens, MaxMaxTokens)
	}
	return nil
}

func (c GenerationConfig) String() string {
	return fmt.Sprintf("%s (temperature=%.2f, max_tokens=%d)", c.Model, c.Temperature, c.MaxTokens)
}

// Response is a model reply plus the token usage the provider reported.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client is bound to one GenerationConfig for its whole life.
type Client interface {
	Provider() Provider
	Config() GenerationConfig
	// StartSession opens a chat seeded with priming turns.
	StartSession(ctx context.Context, priming []transcript.Turn) (Session, error)
	// Generate is a single-shot completion with no session state.
	Generate(ctx context.Context, prompt string) (Response, error)
}

// Session is a stateful chat that remembers priming and prior sends.
type Session interface {
	Send(ctx context.Context, text string) (Response, error)
}

// Builder constructs a client for a credential and config.
type Builder func(ctx context.Context, apiKey string, cfg GenerationConfig) (Client, error)

// Options selects and tunes a provider for NewBuilder.
type Options struct {
	Provider Provider
	BaseURL  string
	Timeout  time.Duration
}

// NewBuilder returns the Builder for opts.Provider.
func NewBuilder(opts Options) (Builder, error) {
	switch opts.Provider {
	case ProviderGemini, "":
		return func(ctx context.Context, apiKey string, cfg GenerationConfig) (Client, error) {
			return NewGeminiClient(ctx, apiKey, cfg, opts)
		}, nil
	case ProviderOpenAI:
		return func(ctx context.Context, apiKey string, cfg GenerationConfig) (Client, error) {
			return NewOpenAIClient(apiKey, cfg, opts)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (valid: %v)", opts.Provider, ValidProviders)
	}
}

// withTimeout bounds a provider call when a timeout is configured.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
