package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"personachat/internal/llm"
	"personachat/internal/session"
)

const helpText = `Commands:
  /persona [id]     switch persona (no id opens the picker)
  /model [id]       switch model (no id lists known models)
  /temp <0-1>       set temperature
  /tokens <50-2048> set max output tokens
  /mode <mode>      stateful_session or reconstructed_context
  /export           save the transcript to a text file
  /copy             copy the last reply to the clipboard
  /clear            clear the visible conversation
  /usage            show token usage
  /help             show this help
  /quit             exit

Keys: Ctrl+P picker  Ctrl+E export  Ctrl+Y copy  Ctrl+C quit`

// parseCommand splits "/name args" into a lowercased name and trimmed args.
func parseCommand(input string) (name, arg string) {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	name, arg, _ = strings.Cut(input, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// handleCommand runs a slash command. Settings commands update the desired
// selection and re-apply it.
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	name, arg := parseCommand(input)
	uiLog().Debug("command /%s", name)

	switch name {
	case "persona", "p":
		if arg == "" {
			return m.openPicker()
		}
		p, err := m.catalog.Get(arg)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.persona = p
		return m, m.startReady()

	case "model":
		if arg == "" {
			m.notice = fmt.Sprintf("Model: %s. Known: %s", m.config.Model, strings.Join(knownModels(), ", "))
			return m, nil
		}
		m.config.Model = arg
		return m, m.startReady()

	case "temp", "temperature":
		t, err := strconv.ParseFloat(arg, 32)
		if err != nil || t < llm.MinTemperature || t > llm.MaxTemperature {
			m.err = fmt.Errorf("temperature must be a number between %.1f and %.1f", llm.MinTemperature, llm.MaxTemperature)
			return m, nil
		}
		m.config.Temperature = float32(t)
		return m, m.startReady()

	case "tokens", "max_tokens":
		n, err := strconv.Atoi(arg)
		if err != nil || n < llm.MinMaxTokens || n > llm.MaxMaxTokens {
			m.err = fmt.Errorf("max tokens must be an integer between %d and %d", llm.MinMaxTokens, llm.MaxMaxTokens)
			return m, nil
		}
		m.config.MaxTokens = n
		return m, m.startReady()

	case "mode":
		mode, err := session.ParseMode(arg)
		if err != nil || arg == "" {
			m.err = fmt.Errorf("usage: /mode %s|%s", session.ModeStateful, session.ModeReconstructed)
			return m, nil
		}
		if mode == m.manager.Mode() {
			m.notice = "Already using " + string(mode)
			return m, nil
		}
		opts := m.sessionOpts
		opts.Mode = mode
		return m, m.startRebuild(session.NewManager(m.build, opts))

	case "export":
		return m, m.exportCmd()

	case "copy":
		return m, m.copyCmd()

	case "clear":
		m.state.ClearLog()
		m.notice = "Conversation cleared."
		m.refreshHistory()
		return m, nil

	case "usage":
		m.screen = ScreenUsage
		m.usagePage.UpdateContent()
		return m, nil

	case "help", "?":
		m.notice = helpText
		return m, nil

	case "quit", "exit":
		return m, tea.Quit

	default:
		m.err = fmt.Errorf("unknown command /%s (try /help)", name)
		return m, nil
	}
}

func knownModels() []string {
	var out []string
	for _, p := range llm.ValidProviders {
		out = append(out, llm.KnownModels[p]...)
	}
	return out
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	m.screen = ScreenPicker
	m.input.Blur()
	m.selectPersona(m.persona.ID)
	return m, nil
}
