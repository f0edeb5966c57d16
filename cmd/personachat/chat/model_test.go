package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personachat/cmd/personachat/ui"
	"personachat/internal/archive"
	"personachat/internal/llm"
	"personachat/internal/llm/llmtest"
	"personachat/internal/persona"
	"personachat/internal/session"
	"personachat/internal/transcript"
)

type testEnv struct {
	fake    *llmtest.Provider
	state   *session.State
	archive *archive.MemoryStore
	copied  []string
	dir     string
}

func newTestModel(t *testing.T, apiKey string) (Model, *testEnv) {
	t.Helper()
	env := &testEnv{
		fake:    &llmtest.Provider{},
		state:   session.NewState(apiKey),
		archive: archive.NewMemoryStore(),
		dir:     t.TempDir(),
	}
	m := New(Options{
		State:     env.state,
		Build:     env.fake.Build,
		Catalog:   persona.Builtin(),
		Archive:   env.archive,
		Styles:    ui.NewStyles(ui.LightTheme()),
		ExportDir: env.dir,
		Copy: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
		Now: func() time.Time { return time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC) },
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), env
}

// run executes cmd and feeds the model's own result messages back into
// Update until no work is left. Timer-driven messages are dropped.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case readyMsg, replyMsg, exportedMsg, copiedMsg:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	m, cmd := press(t, m, tea.KeyEnter)
	return run(t, m, cmd)
}

func started(t *testing.T) (Model, *testEnv) {
	t.Helper()
	m, env := newTestModel(t, "key")
	m = run(t, m, m.Init())
	require.True(t, env.state.Ready())
	return m, env
}

func TestCredentialScreenThenReady(t *testing.T) {
	m, env := newTestModel(t, "")
	require.Equal(t, ScreenCredential, m.Screen())

	m, _ = press(t, m, tea.KeyEnter)
	assert.ErrorIs(t, m.Err(), session.ErrNoCredential)

	m.keyInput.SetValue("  secret  ")
	m, cmd := press(t, m, tea.KeyEnter)
	assert.True(t, m.Busy())
	m = run(t, m, cmd)

	assert.Equal(t, ScreenChat, m.Screen())
	assert.False(t, m.Busy())
	assert.Equal(t, []string{"secret"}, env.fake.Keys)
	turns := env.state.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, transcript.RoleAssistant, turns[0].Role)
	assert.NotContains(t, m.View(), "secret")
}

func TestInitPrimesDefaultPersona(t *testing.T) {
	m, env := started(t)

	p, ok := env.state.Persona()
	require.True(t, ok)
	assert.Equal(t, "luna", p.ID)
	assert.Equal(t, "Now chatting with "+p.DisplayName(), m.Notice())
	assert.Contains(t, m.View(), "Luna")
}

func TestSendMessage(t *testing.T) {
	m, env := started(t)

	m.input.SetValue("Hello")
	m, cmd := press(t, m, tea.KeyEnter)
	assert.True(t, m.Busy())
	assert.Empty(t, m.input.Value())

	// a second message while the first is in flight is refused
	m.input.SetValue("again")
	m, extra := press(t, m, tea.KeyEnter)
	assert.Nil(t, extra)
	assert.Contains(t, m.Notice(), "Waiting for Luna")

	m = run(t, m, cmd)
	assert.False(t, m.Busy())
	turns := env.state.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "Hello", turns[1].Text)
	assert.Equal(t, "echo: Hello", turns[2].Text)
	assert.Equal(t, []string{"Hello"}, env.fake.LastSession().Sent)
}

func TestSendFailureShowsError(t *testing.T) {
	m, env := started(t)
	env.fake.Reply = func(string) (string, error) { return "", llmtest.ErrScripted }

	m = submit(t, m, "Hello")

	var callErr *session.RemoteCallError
	require.ErrorAs(t, m.Err(), &callErr)
	assert.Len(t, env.state.Turns(), 2)
	assert.Contains(t, m.View(), "Error:")
}

func TestTokensCommandRestartsConversation(t *testing.T) {
	m, env := started(t)
	m = submit(t, m, "hi")
	require.Len(t, env.state.Turns(), 3)

	m = submit(t, m, "/tokens 300")

	assert.Equal(t, 2, env.fake.Builds())
	assert.Equal(t, 300, env.state.Config().MaxTokens)
	assert.Len(t, env.state.Turns(), 1)
	assert.Contains(t, m.Notice(), "conversation restarted")
}

func TestSettingsCommands(t *testing.T) {
	m, env := started(t)

	m = submit(t, m, "/temp 0.2")
	assert.InDelta(t, 0.2, env.state.Config().Temperature, 1e-6)

	m = submit(t, m, "/model gemini-2.5-flash")
	assert.Equal(t, "gemini-2.5-flash", env.state.Config().Model)

	m = submit(t, m, "/persona riku")
	p, _ := env.state.Persona()
	assert.Equal(t, "riku", p.ID)
	assert.Equal(t, 3, env.fake.Builds(), "persona switch reuses the client")
	assert.NoError(t, m.Err())
}

func TestInvalidSettingsAreRejected(t *testing.T) {
	m, env := started(t)

	tests := []struct {
		input string
		check func(error) bool
	}{
		{"/temp 5", func(err error) bool { return err != nil }},
		{"/temp warm", func(err error) bool { return err != nil }},
		{"/tokens 10", func(err error) bool { return err != nil }},
		{"/tokens 4096", func(err error) bool { return err != nil }},
		{"/mode", func(err error) bool { return err != nil }},
		{"/persona nobody", func(err error) bool { return errors.Is(err, persona.ErrNotFound) }},
		{"/dance", func(err error) bool { return err != nil && strings.Contains(err.Error(), "unknown command") }},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			next := submit(t, m, tt.input)
			assert.True(t, tt.check(next.Err()), "unexpected error %v", next.Err())
		})
	}
	assert.Equal(t, 1, env.fake.Builds())
	assert.Equal(t, llm.DefaultGenerationConfig(), env.state.Config())
}

func TestModeCommand(t *testing.T) {
	m, env := started(t)

	m = submit(t, m, "/mode reconstructed_context")
	assert.Equal(t, session.ModeReconstructed, m.manager.Mode())
	assert.Equal(t, 2, env.fake.Builds())
	assert.Equal(t, 1, env.fake.Starts(), "reconstructed mode opens no provider session")

	m = submit(t, m, "hello")
	require.Len(t, env.fake.Generated, 1)
	assert.Contains(t, env.fake.Generated[0], "You: hello")

	m = submit(t, m, "/mode reconstructed_context")
	assert.Contains(t, m.Notice(), "Already using")
}

func TestFailedModeSwitchKeepsActiveSession(t *testing.T) {
	m, env := started(t)
	m = submit(t, m, "Hello")
	env.fake.BuildErr = llmtest.ErrScripted

	m = submit(t, m, "/mode reconstructed_context")

	var initErr *session.RemoteInitError
	require.ErrorAs(t, m.Err(), &initErr)
	assert.Equal(t, session.ModeStateful, m.manager.Mode())
	assert.Equal(t, session.ModeStateful, m.sessionOpts.Mode)
	assert.True(t, env.state.Ready())
	assert.Len(t, env.state.Turns(), 3)

	env.fake.BuildErr = nil
	m = submit(t, m, "Again")
	require.NoError(t, m.Err())
	assert.Equal(t, []string{"Hello", "Again"}, env.fake.LastSession().Sent)
	assert.Empty(t, env.fake.Generated)
}

func TestFailedReadyKeepsActiveSelection(t *testing.T) {
	m, env := started(t)
	env.fake.BuildErr = llmtest.ErrScripted

	m = submit(t, m, "/tokens 300")

	var initErr *session.RemoteInitError
	require.ErrorAs(t, m.Err(), &initErr)
	assert.Equal(t, llm.DefaultMaxTokens, m.config.MaxTokens)
	assert.True(t, env.state.Ready())
}

func TestRejectedCredentialReturnsToKeyScreen(t *testing.T) {
	m, env := newTestModel(t, "bad")
	env.fake.BuildErr = &llm.CredentialError{Provider: llm.ProviderGemini, Err: errors.New("API key not valid")}

	m = run(t, m, m.Init())

	assert.Equal(t, ScreenCredential, m.Screen())
	assert.True(t, llm.IsCredentialError(m.Err()))
}

func TestExport(t *testing.T) {
	m, env := started(t)
	m = submit(t, m, "Hello")

	m, cmd := press(t, m, tea.KeyCtrlE)
	m = run(t, m, cmd)
	require.NoError(t, m.Err())

	path := filepath.Join(env.dir, "luna_chat_20250102-150405.txt")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, env.state.Export(), string(data))
	assert.True(t, strings.HasSuffix(string(data), "You: Hello\n\nLuna: echo: Hello"))
	assert.Contains(t, m.Notice(), path)

	entries, err := env.archive.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "luna", entries[0].PersonaID)
	assert.Equal(t, 3, entries[0].Turns)
}

func TestCopyLastReply(t *testing.T) {
	m, env := started(t)

	m, cmd := press(t, m, tea.KeyCtrlY)
	m = run(t, m, cmd)
	require.Len(t, env.copied, 1)
	assert.Equal(t, env.state.Snapshot().LastReply, env.copied[0])

	m = submit(t, m, "Hello")
	m = submit(t, m, "/copy")
	assert.Equal(t, "echo: Hello", env.copied[len(env.copied)-1])
	assert.Contains(t, m.Notice(), "Copied last reply")
}

func TestClearCommand(t *testing.T) {
	m, env := started(t)
	m = submit(t, m, "/clear")
	assert.Empty(t, env.state.Turns())
	assert.True(t, env.state.Ready())

	m, cmd := press(t, m, tea.KeyCtrlY)
	assert.Nil(t, cmd)
	assert.Equal(t, "No reply to copy yet.", m.Notice())
}

func TestPickerSelectsPersona(t *testing.T) {
	m, env := started(t)

	m, _ = press(t, m, tea.KeyCtrlP)
	require.Equal(t, ScreenPicker, m.Screen())
	item, ok := m.picker.SelectedItem().(personaItem)
	require.True(t, ok)
	assert.Equal(t, "luna", item.record.ID, "picker opens on the active persona")

	m.selectPersona("kai")
	m, cmd := press(t, m, tea.KeyEnter)
	m = run(t, m, cmd)

	assert.Equal(t, ScreenChat, m.Screen())
	p, _ := env.state.Persona()
	assert.Equal(t, "kai", p.ID)
	assert.Contains(t, m.Notice(), "Now chatting with Kai")
}

func TestPickerEscapeKeepsPersona(t *testing.T) {
	m, env := started(t)
	m, _ = press(t, m, tea.KeyCtrlP)
	m, cmd := press(t, m, tea.KeyEsc)
	assert.Nil(t, cmd)
	assert.Equal(t, ScreenChat, m.Screen())
	assert.Equal(t, 1, env.fake.Starts())
}

func TestPickerItemsGroupedByCategory(t *testing.T) {
	items := pickerItems(persona.Builtin())
	require.Len(t, items, persona.Builtin().Len())

	seen := map[string]bool{}
	last := ""
	for _, it := range items {
		cat := it.(personaItem).record.Category
		if cat != last {
			assert.False(t, seen[cat], "category %s appears in two groups", cat)
			seen[cat] = true
			last = cat
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in, name, arg string
	}{
		{"/help", "help", ""},
		{"/persona  riku ", "persona", "riku"},
		{"/MODEL gemini-2.5-pro", "model", "gemini-2.5-pro"},
		{"  /temp 0.5", "temp", "0.5"},
		{"/", "", ""},
	}
	for _, tt := range tests {
		name, arg := parseCommand(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.arg, arg, tt.in)
	}
}

func TestViewBeforeResize(t *testing.T) {
	m := New(Options{
		State:   session.NewState("key"),
		Build:   (&llmtest.Provider{}).Build,
		Catalog: persona.Builtin(),
		Styles:  ui.NewStyles(ui.DarkTheme()),
	})
	assert.Equal(t, "Initializing...", m.View())
}
