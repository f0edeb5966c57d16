package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationConfig_Equal(t *testing.T) {
	a := GenerationConfig{Model: "gemini-2.0-flash", Temperature: 0.7, MaxTokens: 300}

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(GenerationConfig{Model: "gemini-2.5-pro", Temperature: 0.7, MaxTokens: 300}))
	assert.False(t, a.Equal(GenerationConfig{Model: "gemini-2.0-flash", Temperature: 0.2, MaxTokens: 300}))
	assert.False(t, a.Equal(GenerationConfig{Model: "gemini-2.0-flash", Temperature: 0.7, MaxTokens: 50}))
}

func TestGenerationConfig_Clamp(t *testing.T) {
	got := GenerationConfig{Temperature: 1.5, MaxTokens: 10}.Clamp()
	assert.Equal(t, GenerationConfig{Model: DefaultModel, Temperature: MaxTemperature, MaxTokens: MinMaxTokens}, got)

	got = GenerationConfig{Model: "m", Temperature: -1, MaxTokens: 99999}.Clamp()
	assert.Equal(t, GenerationConfig{Model: "m", Temperature: MinTemperature, MaxTokens: MaxMaxTokens}, got)

	got = GenerationConfig{Model: "m", Temperature: float32(math.NaN()), MaxTokens: 300}.Clamp()
	assert.Equal(t, float32(MinTemperature), got.Temperature)
}

func TestGenerationConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultGenerationConfig().Validate())

	assert.ErrorContains(t, GenerationConfig{Temperature: 0.5, MaxTokens: 100}.Validate(), "model")
	assert.ErrorContains(t, GenerationConfig{Model: "m", Temperature: 1.1, MaxTokens: 100}.Validate(), "temperature")
	assert.ErrorContains(t, GenerationConfig{Model: "m", Temperature: 0.5, MaxTokens: 49}.Validate(), "max_tokens")
	assert.ErrorContains(t, GenerationConfig{Model: "m", Temperature: 0.5, MaxTokens: 2049}.Validate(), "max_tokens")
}

func TestNewBuilder(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderOpenAI, ""} {
		b, err := NewBuilder(Options{Provider: p})
		require.NoError(t, err, p)
		require.NotNil(t, b)
	}

	_, err := NewBuilder(Options{Provider: "bard"})
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestBuilders_RequireCredential(t *testing.T) {
	for _, p := range ValidProviders {
		b, err := NewBuilder(Options{Provider: p})
		require.NoError(t, err)

		_, err = b(context.Background(), "  ", DefaultGenerationConfig())
		require.Error(t, err, p)
		assert.True(t, IsCredentialError(err), p)
	}
}

func TestIsCredentialError_Wrapped(t *testing.T) {
	err := fmt.Errorf("start session: %w", &CredentialError{Provider: ProviderGemini, Err: errors.New("401")})
	assert.True(t, IsCredentialError(err))
	assert.False(t, IsCredentialError(errors.New("boom")))
}
