// Package llmtest provides a scripted in-memory provider for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"personachat/internal/llm"
	"personachat/internal/transcript"
)

// ErrScripted is the default error injected by the Fail* fields.
var ErrScripted = errors.New("scripted failure")

// Provider records every build, priming and send it serves.
type Provider struct {
	mu sync.Mutex

	// Reply produces the model text for a send or generate call.
	// Defaults to echoing the input.
	Reply func(text string) (string, error)

	// BuildErr and StartErr fail the next builds/primings while non-nil.
	BuildErr error
	StartErr error

	InputTokens  int
	OutputTokens int

	Clients   []*Client
	Sessions  []*Session
	Keys      []string
	Generated []string
}

// Build satisfies llm.Builder.
func (p *Provider) Build(ctx context.Context, apiKey string, cfg llm.GenerationConfig) (llm.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Keys = append(p.Keys, apiKey)
	if p.BuildErr != nil {
		return nil, p.BuildErr
	}
	c := &Client{ID: len(p.Clients) + 1, cfg: cfg, provider: p}
	p.Clients = append(p.Clients, c)
	return c, nil
}

// Builds returns the number of clients built.
func (p *Provider) Builds() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Clients)
}

// Starts returns the number of sessions primed.
func (p *Provider) Starts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Sessions)
}

// LastSession returns the most recently primed session.
func (p *Provider) LastSession() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Sessions) == 0 {
		return nil
	}
	return p.Sessions[len(p.Sessions)-1]
}

func (p *Provider) reply(text string) (llm.Response, error) {
	fn := p.Reply
	if fn == nil {
		fn = func(text string) (string, error) { return "echo: " + text, nil }
	}
	out, err := fn(text)
	if err != nil {
		return llm.Response{}, err
	}
	return llm.Response{Text: out, InputTokens: p.InputTokens, OutputTokens: p.OutputTokens}, nil
}

// Client is a fake llm.Client.
type Client struct {
	ID       int
	cfg      llm.GenerationConfig
	provider *Provider
}

func (c *Client) Provider() llm.Provider       { return "fake" }
func (c *Client) Config() llm.GenerationConfig { return c.cfg }

func (c *Client) StartSession(ctx context.Context, priming []transcript.Turn) (llm.Session, error) {
	p := c.provider
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.StartErr != nil {
		return nil, p.StartErr
	}
	s := &Session{ID: len(p.Sessions) + 1, Client: c, Priming: append([]transcript.Turn(nil), priming...)}
	p.Sessions = append(p.Sessions, s)
	return s, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (llm.Response, error) {
	p := c.provider
	p.mu.Lock()
	p.Generated = append(p.Generated, prompt)
	p.mu.Unlock()
	return p.reply(prompt)
}

// Session is a fake llm.Session.
type Session struct {
	ID      int
	Client  *Client
	Priming []transcript.Turn

	mu   sync.Mutex
	Sent []string
}

func (s *Session) Send(ctx context.Context, text string) (llm.Response, error) {
	s.mu.Lock()
	s.Sent = append(s.Sent, text)
	s.mu.Unlock()
	return s.Client.provider.reply(text)
}
