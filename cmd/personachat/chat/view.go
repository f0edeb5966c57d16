package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"personachat/internal/transcript"
)

func (m *Model) refreshHistory() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	var sb strings.Builder
	name := m.state.Snapshot().Persona.DisplayName()

	for _, turn := range m.state.Turns() {
		if turn.Role == transcript.RoleUser {
			sb.WriteString(m.styles.UserLabel.Render(transcript.UserSpeaker) + "\n")
			sb.WriteString(m.styles.UserInput.Render(turn.Text))
			sb.WriteString("\n\n")
			continue
		}
		sb.WriteString(m.styles.PersonaLabel.Render(name) + "\n")
		sb.WriteString(m.safeRenderMarkdown(turn.Text))
		sb.WriteString("\n")
	}

	// the user turn is not in the log until Send starts
	if m.pending != "" && !m.lastTurnIsPending() {
		sb.WriteString(m.styles.UserLabel.Render(transcript.UserSpeaker) + "\n")
		sb.WriteString(m.styles.UserInput.Render(m.pending))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func (m Model) lastTurnIsPending() bool {
	turns := m.state.Turns()
	if len(turns) == 0 {
		return false
	}
	last := turns[len(turns)-1]
	return last.Role == transcript.RoleUser && last.Text == m.pending
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content + "\n"
}

// View renders the current screen.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.screen {
	case ScreenCredential:
		return m.renderCredentialScreen()
	case ScreenPicker:
		return m.styles.Content.Render(m.picker.View())
	case ScreenUsage:
		return m.styles.Content.Render(m.usagePage.View())
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.styles.Content.Render(m.viewport.View()),
		m.renderStatus(),
		inputStyle.Render(m.input.View()),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	snap := m.state.Snapshot()
	title := m.persona.DisplayName()
	if snap.Persona.ID != "" {
		title = snap.Persona.DisplayName()
	}
	settings := fmt.Sprintf("%s · temp %.2f · %d tokens · %s", m.config.Model, m.config.Temperature, m.config.MaxTokens, m.manager.Mode())
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Header.Render(title),
		" ",
		m.styles.Badge.Render(settings),
	)
}

func (m Model) renderStatus() string {
	switch {
	case m.busy:
		return m.spinner.View() + " " + m.styles.Muted.Render(m.persona.Speaker()+" is thinking...")
	case m.err != nil:
		return m.styles.Error.Render("Error: " + m.err.Error())
	case m.notice != "":
		return m.styles.Info.Render(m.notice)
	default:
		return ""
	}
}

func (m Model) renderFooter() string {
	return m.styles.Footer.Render("Enter: send  Ctrl+P: personas  Ctrl+E: export  Ctrl+Y: copy  /help  Ctrl+C: quit")
}

func (m Model) renderCredentialScreen() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render(" personachat "))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Title.Render("An API key is required to start chatting."))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("Set GEMINI_API_KEY (or OPENAI_API_KEY with provider openai), pass --api-key, or paste one below."))
	sb.WriteString("\n\n")
	sb.WriteString(m.keyInput.View())
	sb.WriteString("\n\n")
	if m.err != nil {
		sb.WriteString(m.styles.Error.Render(m.err.Error()))
		sb.WriteString("\n\n")
	}
	sb.WriteString(m.styles.Footer.Render("Enter: use key  Esc: quit"))
	return m.styles.Content.Render(sb.String())
}
