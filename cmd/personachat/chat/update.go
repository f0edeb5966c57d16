package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"personachat/internal/llm"
	"personachat/internal/session"
)

const (
	headerHeight = 1
	statusHeight = 1
	inputHeight  = 3
	footerHeight = 1
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case readyMsg:
		m.busy = false
		m.handleReady(msg)
		return m, nil

	case replyMsg:
		m.busy = false
		m.pending = ""
		if msg.err != nil {
			m.err = msg.err
			if llm.IsCredentialError(msg.err) {
				m.showCredentialScreen()
			}
		}
		m.refreshHistory()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.notice = "Saved transcript to " + msg.path
		if msg.archiveID != "" {
			m.notice += " (archived as " + msg.archiveID + ")"
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("copy to clipboard: %w", msg.err)
			return m, nil
		}
		m.notice = fmt.Sprintf("Copied last reply (%d characters) to the clipboard.", msg.chars)
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m *Model) handleReady(msg readyMsg) {
	if msg.err != nil {
		uiLog().Warn("ensure ready failed: %v", msg.err)
		// nothing was applied, so the desired selection falls back to the active one
		if p, ok := m.state.Persona(); ok {
			m.persona = p
			m.config = m.state.Config()
		}
		switch {
		case errors.Is(msg.err, session.ErrNoCredential):
			m.showCredentialScreen()
		case llm.IsCredentialError(msg.err):
			m.err = msg.err
			m.showCredentialScreen()
		default:
			m.err = msg.err
		}
		m.refreshHistory()
		return
	}

	if msg.switched != nil {
		m.manager = msg.switched
		m.sessionOpts.Mode = msg.switched.Mode()
		m.notice = fmt.Sprintf("Memory mode set to %s: conversation restarted.", m.manager.Mode())
		m.refreshHistory()
		return
	}

	switch {
	case msg.ready.ResetLog && msg.personaChanged:
		m.notice = "Now chatting with " + m.persona.DisplayName()
	case msg.ready.ResetLog:
		m.notice = fmt.Sprintf("Settings changed to %s: conversation restarted.", m.config)
	}
	m.refreshHistory()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenCredential:
		return m.handleCredentialKey(msg)
	case ScreenPicker:
		return m.handlePickerKey(msg)
	case ScreenUsage:
		if msg.String() == "esc" || msg.String() == "q" {
			m.showChatScreen()
			return m, nil
		}
		var cmd tea.Cmd
		m.usagePage, cmd = m.usagePage.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+p":
		if m.busy {
			m.notice = m.waitingNotice()
			return m, nil
		}
		return m.openPicker()
	case "ctrl+e":
		return m, m.exportCmd()
	case "ctrl+y":
		return m, m.copyCmd()
	case "esc":
		m.notice = ""
		m.err = nil
		return m, nil
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if m.busy {
			m.notice = m.waitingNotice()
			return m, nil
		}
		m.input.Reset()
		m.notice = ""
		if strings.HasPrefix(text, "/") {
			return m.handleCommand(text)
		}
		if !m.state.Ready() {
			m.err = session.ErrNotReady
			return m, nil
		}
		cmd := m.startSend(text)
		m.refreshHistory()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) waitingNotice() string {
	return "Waiting for " + m.persona.Speaker() + " to answer..."
}

func (m Model) handleCredentialKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		key := strings.TrimSpace(m.keyInput.Value())
		if key == "" {
			m.err = session.ErrNoCredential
			return m, nil
		}
		m.state.SetCredential(key)
		m.keyInput.Reset()
		m.showChatScreen()
		uiLog().Info("credential entered")
		return m, m.startReady()
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc":
			m.showChatScreen()
			return m, nil
		case "enter":
			item, ok := m.picker.SelectedItem().(personaItem)
			m.showChatScreen()
			if !ok {
				return m, nil
			}
			m.persona = item.record
			return m, m.startReady()
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// updateFocused forwards other messages (blink, mouse) to the focused component.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenCredential:
		m.keyInput, cmd = m.keyInput.Update(msg)
	case ScreenPicker:
		m.picker, cmd = m.picker.Update(msg)
	case ScreenUsage:
		m.usagePage, cmd = m.usagePage.Update(msg)
	default:
		var vpCmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmd = tea.Batch(cmd, vpCmd)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	chatWidth := width - 2
	if chatWidth < 1 {
		chatWidth = 1
	}
	vpHeight := height - headerHeight - statusHeight - inputHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.viewport.Width = chatWidth
	m.viewport.Height = vpHeight
	m.input.Width = chatWidth - 6
	m.picker.SetSize(width, height)
	m.usagePage.SetSize(width, height)

	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	wrap := chatWidth - 4
	if wrap < 20 {
		wrap = 20
	}
	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	m.ready = true
	m.refreshHistory()
}
