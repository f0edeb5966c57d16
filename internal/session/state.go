package session

import (
	"sync"

	"personachat/internal/llm"
	"personachat/internal/persona"
	"personachat/internal/transcript"
)

// State is everything one user interaction context owns: credential, active
// persona and config, the client and primed session built from them, and the
// conversation log. Callers create one per user and pass it explicitly.
//
// Only Manager mutates persona, config, client and session. The busy guard
// allows a single EnsureReady or Send at a time; field access is separately
// locked so Snapshot is safe while a request is in flight.
type State struct {
	busy sync.Mutex

	mu        sync.RWMutex
	apiKey    string
	persona   persona.Record
	config    llm.GenerationConfig
	client    llm.Client
	chat      llm.Session
	log       *transcript.Log
	sessionID string
}

// NewState returns an uninitialized state. apiKey may be empty.
func NewState(apiKey string) *State {
	return &State{apiKey: apiKey, log: transcript.NewLog()}
}

// SetCredential replaces the API key. The client and session are dropped so
// the next EnsureReady rebuilds them with the new key; the log is kept.
func (s *State) SetCredential(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if apiKey == s.apiKey {
		return
	}
	s.apiKey = apiKey
	s.client = nil
	s.chat = nil
}

// Invalidate drops the client and session so the next EnsureReady rebuilds
// both. Used when the memory mode changes. The log is kept.
func (s *State) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.chat = nil
}

// HasCredential reports whether an API key is set.
func (s *State) HasCredential() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey != ""
}

// Ready reports whether Send can be called.
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chat != nil
}

// Persona returns the active persona and whether one has been applied.
func (s *State) Persona() (persona.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persona, s.persona.ID != ""
}

// Config returns the config the current client was built with.
func (s *State) Config() llm.GenerationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SessionID identifies the current primed session. It changes on every priming.
func (s *State) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Turns returns a copy of the conversation log.
func (s *State) Turns() []transcript.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.All()
}

// ClearLog empties the conversation log without touching the session.
func (s *State) ClearLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Clear()
}

// Export renders the log as plain text using the active persona's speaker name.
func (s *State) Export() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Export(s.persona.Speaker())
}

// Snapshot is a render-ready copy of a State.
type Snapshot struct {
	Persona       persona.Record
	Config        llm.GenerationConfig
	Turns         []transcript.Turn
	Ready         bool
	HasCredential bool
	SessionID     string
	LastReply     string
}

// Snapshot copies the state for rendering.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Persona:       s.persona,
		Config:        s.config,
		Turns:         s.log.All(),
		Ready:         s.chat != nil,
		HasCredential: s.apiKey != "",
		SessionID:     s.sessionID,
	}
	if last, ok := s.log.LastAssistant(); ok {
		snap.LastReply = last.Text
	}
	return snap
}
