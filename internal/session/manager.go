// Package session owns the lifecycle of a persona chat: building the model
// client, priming a chat session with the persona's system prompt, and
// forwarding user messages while keeping the conversation log consistent.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"personachat/internal/llm"
	"personachat/internal/logging"
	"personachat/internal/persona"
	"personachat/internal/transcript"
	"personachat/internal/usage"
)

// Mode selects how conversation memory is kept.
type Mode string

const (
	// ModeStateful keeps history in a provider chat session.
	ModeStateful Mode = "stateful_session"
	// ModeReconstructed replays the last N turns as prompt text on every send.
	ModeReconstructed Mode = "reconstructed_context"
)

// DefaultContextWindow is the number of prior turns replayed in reconstructed mode.
const DefaultContextWindow = 10

// ValidModes lists all memory modes.
var ValidModes = []Mode{ModeStateful, ModeReconstructed}

// ParseMode maps a config or command string to a Mode. Empty means stateful.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.TrimSpace(s)) {
	case ModeStateful, "":
		return ModeStateful, nil
	case ModeReconstructed:
		return ModeReconstructed, nil
	default:
		return "", fmt.Errorf("unknown memory mode %q (valid: %v)", s, ValidModes)
	}
}

// Options configures a Manager.
type Options struct {
	Mode          Mode
	ContextWindow int
	// Usage receives token counts for every successful reply. Optional.
	Usage *usage.Tracker
}

// Manager applies persona and config changes to states and forwards messages.
// It holds no per-user data; one Manager serves any number of states.
type Manager struct {
	build  llm.Builder
	mode   Mode
	window int
	usage  *usage.Tracker
}

// NewManager creates a manager that builds clients with build.
func NewManager(build llm.Builder, opts Options) *Manager {
	if opts.Mode == "" {
		opts.Mode = ModeStateful
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = DefaultContextWindow
	}
	return &Manager{build: build, mode: opts.Mode, window: opts.ContextWindow, usage: opts.Usage}
}

// Mode returns the memory mode.
func (m *Manager) Mode() Mode { return m.mode }

// Readiness describes what EnsureReady did.
type Readiness struct {
	// Client is true when a new client was built.
	Client bool
	// Session is true when a new session was primed.
	Session bool
	// ResetLog is true when the log was replaced by the greeting.
	ResetLog bool
}

// EnsureReady makes st hold a primed session for p under cfg, rebuilding only
// what changed. A new client is built when cfg differs from the active config
// or no client exists. A new session is primed when the client was rebuilt,
// the persona differs, or no session exists; priming resets the log to the
// persona's greeting. On error nothing in st changes.
func (m *Manager) EnsureReady(ctx context.Context, st *State, p persona.Record, cfg llm.GenerationConfig) (Readiness, error) {
	return m.ensure(ctx, st, p, cfg, false)
}

// Rebuild builds a new client and primes a new session for p under cfg even
// when st already holds one. It is used when the memory mode changes. On
// error st keeps its previous client, session and log.
func (m *Manager) Rebuild(ctx context.Context, st *State, p persona.Record, cfg llm.GenerationConfig) (Readiness, error) {
	return m.ensure(ctx, st, p, cfg, true)
}

func (m *Manager) ensure(ctx context.Context, st *State, p persona.Record, cfg llm.GenerationConfig, force bool) (Readiness, error) {
	if !st.busy.TryLock() {
		return Readiness{}, ErrBusy
	}
	defer st.busy.Unlock()

	st.mu.RLock()
	apiKey := st.apiKey
	client := st.client
	chat := st.chat
	activePersona := st.persona
	activeConfig := st.config
	st.mu.RUnlock()

	if apiKey == "" {
		return Readiness{}, ErrNoCredential
	}

	var ready Readiness
	if force || client == nil || !cfg.Equal(activeConfig) {
		timer := logging.StartTimer(logging.CategorySession, "build client")
		built, err := m.build(ctx, apiKey, cfg)
		timer.Stop()
		if err != nil {
			logging.Get(logging.CategorySession).Error("build client failed for %s: %v", cfg, err)
			return Readiness{}, &RemoteInitError{Op: "build client", Model: cfg.Model, PersonaID: p.ID, Err: err}
		}
		client = built
		ready.Client = true
	}

	if !ready.Client && chat != nil && activePersona.ID == p.ID {
		return ready, nil
	}

	greeting := transcript.Assistant(p.GreetingText())
	newChat, err := m.prime(ctx, client, p, greeting)
	if err != nil {
		logging.Get(logging.CategorySession).Error("priming failed for persona %s: %v", p.ID, err)
		return Readiness{}, &RemoteInitError{Op: "start session", Model: cfg.Model, PersonaID: p.ID, Err: err}
	}
	ready.Session = true
	ready.ResetLog = true

	st.mu.Lock()
	st.client = client
	st.config = cfg
	st.chat = newChat
	st.persona = p
	st.sessionID = uuid.NewString()
	st.log.Reset(greeting)
	st.mu.Unlock()

	logging.Session("primed persona=%s model=%s mode=%s client_rebuilt=%t", p.ID, cfg.Model, m.mode, ready.Client)
	return ready, nil
}

func (m *Manager) prime(ctx context.Context, client llm.Client, p persona.Record, greeting transcript.Turn) (llm.Session, error) {
	if m.mode == ModeReconstructed {
		return newContextSession(client, p, greeting, m.window), nil
	}
	timer := logging.StartTimer(logging.CategorySession, "start session")
	defer timer.Stop()
	return client.StartSession(ctx, []transcript.Turn{transcript.User(p.SystemPrompt), greeting})
}

// Send forwards text to the primed session and returns the trimmed reply.
// The user turn is logged before the call; on failure it stays and no
// assistant turn is added.
func (m *Manager) Send(ctx context.Context, st *State, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	if !st.busy.TryLock() {
		return "", ErrBusy
	}
	defer st.busy.Unlock()

	st.mu.Lock()
	chat := st.chat
	if chat == nil {
		st.mu.Unlock()
		return "", ErrNotReady
	}
	p := st.persona
	cfg := st.config
	client := st.client
	sessionID := st.sessionID
	st.log.Append(transcript.User(text))
	st.mu.Unlock()

	logging.SessionDebug("send persona=%s chars=%d", p.ID, len(text))
	timer := logging.StartTimer(logging.CategoryAPI, "send")
	resp, err := chat.Send(ctx, text)
	timer.Stop()
	if err != nil {
		logging.Get(logging.CategorySession).Error("send failed for persona %s: %v", p.ID, err)
		return "", &RemoteCallError{PersonaID: p.ID, Err: err}
	}

	reply := strings.TrimSpace(resp.Text)
	st.mu.Lock()
	st.log.Append(transcript.Assistant(reply))
	st.mu.Unlock()

	if m.usage != nil {
		m.usage.Track(usage.WithSession(ctx, p.ID, sessionID), cfg.Model, string(client.Provider()), resp.InputTokens, resp.OutputTokens)
	}
	return reply, nil
}
