package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"personachat/internal/archive"
	"personachat/internal/llm"
	"personachat/internal/llm/llmtest"
	"personachat/internal/persona"
	"personachat/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type harness struct {
	t       *testing.T
	fake    *llmtest.Provider
	archive *archive.MemoryStore
	srv     *Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := &llmtest.Provider{Reply: func(text string) (string, error) {
		return "  reply to " + text + "  ", nil
	}}
	store := archive.NewMemoryStore()
	srv := New(Options{
		Manager: session.NewManager(fake.Build, session.Options{}),
		Catalog: persona.Builtin(),
		Archive: store,
	})
	srv.now = func() time.Time { return time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC) }
	return &harness{t: t, fake: fake, archive: store, srv: srv}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (h *harness) createSession(apiKey string) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/sessions", map[string]string{"api_key": apiKey})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[sessionView](h.t, rec).ID
}

type readyResponse struct {
	Session        sessionView `json:"session"`
	ClientRebuilt  bool        `json:"client_rebuilt"`
	SessionRebuilt bool        `json:"session_rebuilt"`
	LogReset       bool        `json:"log_reset"`
}

type messageResponse struct {
	Reply   string      `json:"reply"`
	Session sessionView `json:"session"`
}

type errorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	Informational bool   `json:"informational"`
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListPersonas(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/personas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Personas   []personaView `json:"personas"`
		Categories []string      `json:"categories"`
		Default    string        `json:"default"`
	}](t, rec)
	assert.Len(t, body.Personas, persona.Builtin().Len())
	assert.Equal(t, "luna", body.Default)

	rec = h.do(http.MethodGet, "/api/personas?category=mystics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	filtered := decode[struct {
		Personas []personaView `json:"personas"`
	}](t, rec)
	require.NotEmpty(t, filtered.Personas)
	for _, p := range filtered.Personas {
		assert.Equal(t, "Mystics", p.Category)
	}

	rec = h.do(http.MethodGet, "/api/personas/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenario_ReadyMessageExport(t *testing.T) {
	h := newHarness(t)
	id := h.createSession("key")

	rec := h.do(http.MethodPost, "/api/sessions/"+id+"/ready", map[string]any{"persona_id": "riku", "max_tokens": 50})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ready := decode[readyResponse](t, rec)
	assert.True(t, ready.ClientRebuilt)
	assert.True(t, ready.LogReset)
	require.Len(t, ready.Session.Turns, 1)
	assert.Equal(t, "Riku", ready.Session.Turns[0].Speaker)
	assert.Equal(t, 50, ready.Session.Config.MaxTokens)

	rec = h.do(http.MethodPost, "/api/sessions/"+id+"/messages", map[string]string{"text": "What is honor?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	msg := decode[messageResponse](t, rec)
	assert.Equal(t, "reply to What is honor?", msg.Reply)
	assert.Len(t, msg.Session.Turns, 3)

	rec = h.do(http.MethodGet, "/api/sessions/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="riku_chat_20250102-150405.txt"`, rec.Header().Get("Content-Disposition"))
	greeting := mustGreeting(t, "riku")
	assert.Equal(t, "Riku: "+greeting+"\n\nYou: What is honor?\n\nRiku: reply to What is honor?", rec.Body.String())

	transcriptID := rec.Header().Get("X-Transcript-ID")
	require.NotEmpty(t, transcriptID)
	rec = h.do(http.MethodGet, "/api/transcripts/"+transcriptID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decode[archive.Entry](t, rec)
	assert.Equal(t, "riku", entry.PersonaID)
	assert.Equal(t, 3, entry.Turns)

	rec = h.do(http.MethodGet, "/api/transcripts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), transcriptID)
}

func mustGreeting(t *testing.T, id string) string {
	t.Helper()
	p, err := persona.Builtin().Get(id)
	require.NoError(t, err)
	return p.GreetingText()
}

func TestReady_ConfigChangeResetsLog(t *testing.T) {
	h := newHarness(t)
	id := h.createSession("key")

	rec := h.do(http.MethodPost, "/api/sessions/"+id+"/ready", map[string]any{"persona_id": "riku", "max_tokens": 50})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodPost, "/api/sessions/"+id+"/messages", map[string]string{"text": "hi"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodPost, "/api/sessions/"+id+"/ready", map[string]any{"max_tokens": 300})
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[readyResponse](t, rec)
	assert.True(t, ready.ClientRebuilt)
	assert.Len(t, ready.Session.Turns, 1)
	assert.Equal(t, "riku", ready.Session.Persona.ID, "persona is kept when omitted")
	assert.Equal(t, 2, h.fake.Builds())

	// unchanged settings are a no-op
	rec = h.do(http.MethodPost, "/api/sessions/"+id+"/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[readyResponse](t, rec).SessionRebuilt)
}

func TestErrorMapping(t *testing.T) {
	h := newHarness(t)

	t.Run("no credential is informational 401", func(t *testing.T) {
		id := h.createSession("")
		rec := h.do(http.MethodPost, "/api/sessions/"+id+"/ready", map[string]any{"persona_id": "luna"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decode[errorResponse](t, rec)
		assert.True(t, body.Informational)
		assert.Equal(t, "credential_required", body.Code)

		rec = h.do(http.MethodPost, "/api/sessions/"+id+"/credential", map[string]string{"api_key": "key"})
		require.Equal(t, http.StatusOK, rec.Code)
		rec = h.do(http.MethodPost, "/api/sessions/"+id+"/ready", map[string]any{"persona_id": "luna"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejected credential is 401", func(t *testing.T) {
		h.fake.BuildErr = &llm.CredentialError{Provider: llm.ProviderGemini, Err: errors.New("API key not valid")}
		defer func() { h.fake.BuildErr = nil }()
		id := h.createSession("bad")
		rec := h.do(http.MethodPost, "/api/sessions/"+id+"/ready", map[string]any{"persona_id": "luna"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "credential_rejected", decode[errorResponse](t, rec).Code)
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/api/sessions/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown persona is 404", func(t *testing.T) {
		id := h.createSession("key")
		rec := h.do(http.MethodPost, "/api/sessions/"+id+"/ready", map[string]any{"persona_id": "nobody"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("out of range config is 400", func(t *testing.T) {
		id := h.createSession("key")
		rec := h.do(http.MethodPost, "/api/sessions/"+id+"/ready", map[string]any{"temperature": 1.5})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("message before ready is 409", func(t *testing.T) {
		id := h.createSession("key")
		rec := h.do(http.MethodPost, "/api/sessions/"+id+"/messages", map[string]string{"text": "hi"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("empty message is 400", func(t *testing.T) {
		id := h.createSession("key")
		require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/sessions/"+id+"/ready", nil).Code)
		rec := h.do(http.MethodPost, "/api/sessions/"+id+"/messages", map[string]string{"text": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("remote failure is 502 and keeps the user turn", func(t *testing.T) {
		id := h.createSession("key")
		require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/sessions/"+id+"/ready", nil).Code)

		h.fake.Reply = func(string) (string, error) { return "", llmtest.ErrScripted }
		rec := h.do(http.MethodPost, "/api/sessions/"+id+"/messages", map[string]string{"text": "hello"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		rec = h.do(http.MethodGet, "/api/sessions/"+id, nil)
		view := decode[sessionView](t, rec)
		require.Len(t, view.Turns, 2)
		assert.Equal(t, "hello", view.Turns[1].Text)
	})
}

func TestStatusFor_Busy(t *testing.T) {
	status, code := statusFor(session.ErrBusy)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "busy", code)

	status, _ = statusFor(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestClearAndDelete(t *testing.T) {
	h := newHarness(t)
	id := h.createSession("key")
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/sessions/"+id+"/ready", nil).Code)

	rec := h.do(http.MethodPost, "/api/sessions/"+id+"/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[sessionView](t, rec).Turns)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/sessions/"+id, nil).Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.srv.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRegistry_SweepExpiresIdleSessions(t *testing.T) {
	clock := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	r := newRegistry()
	r.now = func() time.Time { return clock }

	stale := r.create("key")
	active := r.create("key")

	clock = clock.Add(20 * time.Minute)
	_, ok := r.get(active.id)
	require.True(t, ok)

	clock = clock.Add(15 * time.Minute)
	assert.Equal(t, 1, r.sweep(30*time.Minute))

	_, ok = r.get(stale.id)
	assert.False(t, ok, "idle session should be gone")
	_, ok = r.get(active.id)
	assert.True(t, ok, "recently used session should survive")
	assert.Equal(t, 1, r.len())
}

func TestRun_ExpiresIdleSessions(t *testing.T) {
	fake := &llmtest.Provider{}
	srv := New(Options{
		Manager:     session.NewManager(fake.Build, session.Options{}),
		Catalog:     persona.Builtin(),
		SessionIdle: 40 * time.Millisecond,
	})
	srv.sessions.create("key")
	require.Equal(t, 1, srv.sessions.len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	assert.Eventually(t, func() bool { return srv.sessions.len() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_NegativeIdleKeepsSessions(t *testing.T) {
	fake := &llmtest.Provider{}
	srv := New(Options{
		Manager:     session.NewManager(fake.Build, session.Options{}),
		Catalog:     persona.Builtin(),
		SessionIdle: -1,
	})
	srv.sessions.create("key")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 1, srv.sessions.len())
}
