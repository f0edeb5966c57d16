package session

import (
	"context"
	"strings"

	"personachat/internal/llm"
	"personachat/internal/persona"
	"personachat/internal/transcript"
)

// contextSession keeps no provider-side state. Each send is one completion
// whose prompt is the system prompt followed by the last window turns.
type contextSession struct {
	client       llm.Client
	systemPrompt string
	speaker      string
	window       int
	turns        []transcript.Turn
}

func newContextSession(client llm.Client, p persona.Record, greeting transcript.Turn, window int) *contextSession {
	return &contextSession{
		client:       client,
		systemPrompt: p.SystemPrompt,
		speaker:      p.Speaker(),
		window:       window,
		turns:        []transcript.Turn{greeting},
	}
}

// Send is only called under the owning State's busy guard.
func (s *contextSession) Send(ctx context.Context, text string) (llm.Response, error) {
	resp, err := s.client.Generate(ctx, s.prompt(text))
	if err != nil {
		return llm.Response{}, err
	}
	s.turns = transcript.Window(append(s.turns, transcript.User(text), transcript.Assistant(strings.TrimSpace(resp.Text))), s.window)
	return resp, nil
}

func (s *contextSession) prompt(text string) string {
	var b strings.Builder
	b.WriteString(s.systemPrompt)
	b.WriteString("\n\n")
	for _, t := range transcript.Window(s.turns, s.window) {
		b.WriteString(transcript.Speaker(t.Role, s.speaker))
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	b.WriteString(transcript.UserSpeaker)
	b.WriteString(": ")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(s.speaker)
	b.WriteString(":")
	return b.String()
}
