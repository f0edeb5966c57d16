package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"personachat/internal/logging"
	"personachat/internal/transcript"
)

// GeminiClient implements Client on the Google GenAI SDK.
type GeminiClient struct {
	client  *genai.Client
	cfg     GenerationConfig
	timeout time.Duration
}

// NewGeminiClient creates a Gemini client bound to cfg. No network call is made.
func NewGeminiClient(ctx context.Context, apiKey string, cfg GenerationConfig, opts Options) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &CredentialError{Provider: ProviderGemini, Err: errors.New("API key is required")}
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	logging.APIDebug("gemini client created: %s", cfg)
	return &GeminiClient{client: client, cfg: cfg, timeout: opts.Timeout}, nil
}

func (c *GeminiClient) Provider() Provider       { return ProviderGemini }
func (c *GeminiClient) Config() GenerationConfig { return c.cfg }

func (c *GeminiClient) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.cfg.Temperature),
		MaxOutputTokens: int32(c.cfg.MaxTokens),
	}
}

// StartSession creates a chat whose history is the priming turns.
func (c *GeminiClient) StartSession(ctx context.Context, priming []transcript.Turn) (Session, error) {
	chat, err := c.client.Chats.Create(ctx, c.cfg.Model, c.generateConfig(), geminiHistory(priming))
	if err != nil {
		return nil, classifyGemini(err)
	}
	return &geminiSession{chat: chat, timeout: c.timeout, model: c.cfg.Model}, nil
}

// Generate sends prompt as a single user turn.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (Response, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryAPI, "gemini generate")
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), c.generateConfig())
	timer.StopWithThreshold(30 * time.Second)
	if err != nil {
		return Response{}, classifyGemini(err)
	}
	return geminiResponse(resp)
}

type geminiSession struct {
	chat    *genai.Chat
	model   string
	timeout time.Duration
}

func (s *geminiSession) Send(ctx context.Context, text string) (Response, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryAPI, "gemini chat send")
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	timer.StopWithThreshold(30 * time.Second)
	if err != nil {
		return Response{}, classifyGemini(err)
	}
	return geminiResponse(resp)
}

// geminiHistory maps transcript roles onto GenAI roles.
func geminiHistory(turns []transcript.Turn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == transcript.RoleAssistant {
			role = genai.RoleModel
		}
		history = append(history, genai.NewContentFromText(t.Text, role))
	}
	return history
}

func geminiResponse(resp *genai.GenerateContentResponse) (Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return Response{}, ErrEmptyResponse
	}
	out := Response{Text: resp.Text()}
	if u := resp.UsageMetadata; u != nil {
		out.InputTokens = int(u.PromptTokenCount)
		out.OutputTokens = int(u.CandidatesTokenCount)
	}
	return out, nil
}

// classifyGemini turns auth failures into CredentialError.
func classifyGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if isAuthStatus(apiErr.Code) || strings.Contains(apiErr.Message, "API key not valid") {
			return &CredentialError{Provider: ProviderGemini, Err: err}
		}
	}
	return err
}
