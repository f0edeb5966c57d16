package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"personachat/internal/logging"
	"personachat/internal/transcript"
)

// OpenAIClient implements Client for OpenAI-compatible chat completion APIs.
// The API is stateless, so sessions keep their message list client-side.
type OpenAIClient struct {
	client  *openai.Client
	cfg     GenerationConfig
	timeout time.Duration
}

// NewOpenAIClient creates a client bound to cfg. No network call is made.
func NewOpenAIClient(apiKey string, cfg GenerationConfig, opts Options) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &CredentialError{Provider: ProviderOpenAI, Err: errors.New("API key is required")}
	}

	config := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	logging.APIDebug("openai client created: %s base_url=%s", cfg, config.BaseURL)
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(config),
		cfg:     cfg,
		timeout: opts.Timeout,
	}, nil
}

func (c *OpenAIClient) Provider() Provider       { return ProviderOpenAI }
func (c *OpenAIClient) Config() GenerationConfig { return c.cfg }

// StartSession seeds a local message list with the priming turns.
func (c *OpenAIClient) StartSession(ctx context.Context, priming []transcript.Turn) (Session, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(priming))
	for _, t := range priming {
		messages = append(messages, openaiMessage(t.Role, t.Text))
	}
	return &openaiSession{client: c, messages: messages}, nil
}

// Generate sends prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (Response, error) {
	return c.complete(ctx, []openai.ChatCompletionMessage{openaiMessage(transcript.RoleUser, prompt)})
}

func (c *OpenAIClient) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (Response, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	// Temperature is omitempty in the request; zero would fall back to the
	// provider default of 1.0.
	temperature := c.cfg.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	timer := logging.StartTimer(logging.CategoryAPI, "openai chat completion")
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	timer.StopWithThreshold(30 * time.Second)
	if err != nil {
		return Response{}, classifyOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, ErrEmptyResponse
	}
	return Response{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

type openaiSession struct {
	client   *OpenAIClient
	messages []openai.ChatCompletionMessage
}

// Send only commits the user message to history once the call succeeds.
func (s *openaiSession) Send(ctx context.Context, text string) (Response, error) {
	pending := append(append([]openai.ChatCompletionMessage(nil), s.messages...), openaiMessage(transcript.RoleUser, text))

	resp, err := s.client.complete(ctx, pending)
	if err != nil {
		return Response{}, err
	}
	s.messages = append(pending, openaiMessage(transcript.RoleAssistant, resp.Text))
	return resp, nil
}

func openaiMessage(role transcript.Role, text string) openai.ChatCompletionMessage {
	r := openai.ChatMessageRoleUser
	if role == transcript.RoleAssistant {
		r = openai.ChatMessageRoleAssistant
	}
	return openai.ChatCompletionMessage{Role: r, Content: text}
}

func classifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && isAuthStatus(apiErr.HTTPStatusCode) {
		return &CredentialError{Provider: ProviderOpenAI, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && isAuthStatus(reqErr.HTTPStatusCode) {
		return &CredentialError{Provider: ProviderOpenAI, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai request timed out: %w", err)
	}
	return err
}
