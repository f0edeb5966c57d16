package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"personachat/internal/usage"
)

// UsagePageModel renders token usage statistics.
type UsagePageModel struct {
	viewport viewport.Model
	tracker  *usage.Tracker
	styles   Styles
	width    int
	height   int
}

// NewUsagePageModel creates a new usage page component. tracker may be nil.
func NewUsagePageModel(tracker *usage.Tracker, styles Styles) UsagePageModel {
	return UsagePageModel{
		viewport: viewport.New(80, 20),
		tracker:  tracker,
		styles:   styles,
	}
}

// SetSize updates the size of the viewport.
func (m *UsagePageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - 4 // header and footer
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.UpdateContent()
}

// UpdateContent refreshes the viewport content from the tracker data.
func (m *UsagePageModel) UpdateContent() {
	m.viewport.SetContent(m.render())
}

func (m *UsagePageModel) render() string {
	if m.tracker == nil {
		return "Usage tracking not available."
	}

	stats := m.tracker.Stats()

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Token Usage"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Requests:     %d\n", stats.Requests))
	sb.WriteString(fmt.Sprintf("Total Input:  %d\n", stats.Total.Input))
	sb.WriteString(fmt.Sprintf("Total Output: %d\n", stats.Total.Output))
	sb.WriteString(fmt.Sprintf("Grand Total:  %d\n", stats.Total.Total))
	sb.WriteString("\n")

	renderTable := func(title string, data map[string]usage.TokenCounts) {
		if len(data) == 0 {
			return
		}
		sb.WriteString(m.styles.Title.Render(title))
		sb.WriteString("\n")

		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(fmt.Sprintf("%-28s %10s %10s %10s\n", "Name", "Input", "Output", "Total"))
		sb.WriteString(m.styles.RenderDivider(61))
		sb.WriteString("\n")
		for _, k := range keys {
			v := data[k]
			sb.WriteString(fmt.Sprintf("%-28s %10d %10d %10d\n", truncate(k, 28), v.Input, v.Output, v.Total))
		}
		sb.WriteString("\n")
	}

	renderTable("By Persona", stats.ByPersona)
	renderTable("By Model", stats.ByModel)
	renderTable("By Provider", stats.ByProvider)

	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Update handles scrolling.
func (m UsagePageModel) Update(msg tea.Msg) (UsagePageModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the page.
func (m UsagePageModel) View() string {
	return m.viewport.View() + "\n" + m.styles.Muted.Render("Esc: back to chat")
}
