// Package chat provides the interactive terminal chat interface.
package chat

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"personachat/cmd/personachat/ui"
	"personachat/internal/archive"
	"personachat/internal/llm"
	"personachat/internal/logging"
	"personachat/internal/persona"
	"personachat/internal/session"
	"personachat/internal/usage"
)

// Screen determines which component is focused.
type Screen int

const (
	ScreenChat Screen = iota
	ScreenCredential
	ScreenPicker
	ScreenUsage
)

// Options configures the chat interface.
type Options struct {
	State   *session.State
	Build   llm.Builder
	Session session.Options
	Catalog *persona.Catalog

	// Persona and Config are applied on startup.
	Persona persona.Record
	Config  llm.GenerationConfig

	// Archive receives exported transcripts. Optional.
	Archive archive.Store
	// Usage backs the /usage page. Optional.
	Usage *usage.Tracker

	Styles ui.Styles
	// ExportDir is where /export writes files. Empty means the working directory.
	ExportDir string

	// Copy writes to the system clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
	Now  func() time.Time
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	// UI Components
	input     textinput.Model
	keyInput  textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	picker    list.Model
	usagePage ui.UsagePageModel
	renderer  *glamour.TermRenderer
	styles    ui.Styles

	// Collaborators
	state       *session.State
	manager     *session.Manager
	build       llm.Builder
	sessionOpts session.Options
	catalog     *persona.Catalog
	archive     archive.Store
	copy        func(string) error
	now         func() time.Time
	exportDir   string

	// Desired selection. EnsureReady makes the state match it.
	persona persona.Record
	config  llm.GenerationConfig

	// State
	screen  Screen
	ready   bool
	busy    bool
	pending string
	notice  string
	err     error
	width   int
	height  int
}

// New creates the chat model.
func New(opts Options) Model {
	styles := opts.Styles

	ti := textinput.New()
	ti.Placeholder = "Say something... (Enter to send, /help for commands)"
	ti.Prompt = "| "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput
	ti.Focus()

	ki := textinput.New()
	ki.Placeholder = "API key"
	ki.Prompt = "> "
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.Width = 60
	ki.PromptStyle = styles.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	p := opts.Persona
	if p.ID == "" {
		p = opts.Catalog.Default()
	}
	cfg := opts.Config
	if cfg.Model == "" {
		cfg = llm.DefaultGenerationConfig()
	}

	m := Model{
		input:       ti,
		keyInput:    ki,
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		picker:      newPicker(opts.Catalog, styles),
		usagePage:   ui.NewUsagePageModel(opts.Usage, styles),
		styles:      styles,
		state:       opts.State,
		manager:     session.NewManager(opts.Build, opts.Session),
		build:       opts.Build,
		sessionOpts: opts.Session,
		catalog:     opts.Catalog,
		archive:     opts.Archive,
		copy:        copyFn,
		now:         now,
		exportDir:   opts.ExportDir,
		persona:     p,
		config:      cfg,
		screen:      ScreenChat,
	}
	if m.state.HasCredential() {
		m.busy = true
	} else {
		m.showCredentialScreen()
	}
	return m
}

// Init starts the spinner and primes the initial persona when a key is set.
func (m Model) Init() tea.Cmd {
	if m.screen == ScreenCredential {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.readyCmd())
}

func (m *Model) showCredentialScreen() {
	m.screen = ScreenCredential
	m.input.Blur()
	m.keyInput.Reset()
	m.keyInput.Focus()
}

func (m *Model) showChatScreen() {
	m.screen = ScreenChat
	m.keyInput.Blur()
	m.input.Focus()
}

// Screen returns the focused screen.
func (m Model) Screen() Screen { return m.screen }

// Busy reports whether a request is in flight.
func (m Model) Busy() bool { return m.busy }

// Err returns the last error shown in the error line.
func (m Model) Err() error { return m.err }

// Notice returns the current status notice.
func (m Model) Notice() string { return m.notice }

func uiLog() *logging.Logger { return logging.Get(logging.CategoryUI) }
