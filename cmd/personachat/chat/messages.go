package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"personachat/internal/archive"
	"personachat/internal/session"
	"personachat/internal/transcript"
)

// readyMsg carries the result of EnsureReady.
type readyMsg struct {
	ready          session.Readiness
	personaChanged bool

	// switched is the manager that replaces the active one once it has
	// rebuilt the session. Nil for plain EnsureReady.
	switched *session.Manager
	err      error
}

// replyMsg carries the result of Send.
type replyMsg struct {
	reply string
	err   error
}

type exportedMsg struct {
	path      string
	archiveID string
	err       error
}

type copiedMsg struct {
	chars int
	err   error
}

// startReady marks the model busy and applies the desired persona and config.
func (m *Model) startReady() tea.Cmd {
	m.busy = true
	m.err = nil
	return tea.Batch(m.spinner.Tick, m.readyCmd())
}

// readyCmd runs EnsureReady off the UI goroutine.
func (m Model) readyCmd() tea.Cmd {
	manager, st, p, cfg := m.manager, m.state, m.persona, m.config
	active, hadPersona := st.Persona()
	changed := !hadPersona || active.ID != p.ID
	return func() tea.Msg {
		ready, err := manager.EnsureReady(context.Background(), st, p, cfg)
		return readyMsg{ready: ready, personaChanged: changed, err: err}
	}
}

// startRebuild rebuilds the session under next without touching the active
// manager; handleReady swaps it in only if the rebuild succeeds.
func (m *Model) startRebuild(next *session.Manager) tea.Cmd {
	m.busy = true
	m.err = nil
	st, p, cfg := m.state, m.persona, m.config
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ready, err := next.Rebuild(context.Background(), st, p, cfg)
		return readyMsg{ready: ready, switched: next, err: err}
	})
}

func (m *Model) startSend(text string) tea.Cmd {
	m.busy = true
	m.err = nil
	m.pending = text
	manager, st := m.manager, m.state
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		reply, err := manager.Send(context.Background(), st, text)
		return replyMsg{reply: reply, err: err}
	})
}

func (m *Model) exportCmd() tea.Cmd {
	snap := m.state.Snapshot()
	if snap.Persona.ID == "" || len(snap.Turns) == 0 {
		m.notice = "Nothing to export yet."
		return nil
	}
	dir, at, store := m.exportDir, m.now(), m.archive
	return func() tea.Msg {
		speaker := snap.Persona.Speaker()
		text := transcript.Export(snap.Turns, speaker)
		path := filepath.Join(dir, transcript.Filename(speaker, at))
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return exportedMsg{err: fmt.Errorf("export transcript: %w", err)}
		}

		msg := exportedMsg{path: path}
		if store != nil {
			entry := &archive.Entry{
				SessionID:   snap.SessionID,
				PersonaID:   snap.Persona.ID,
				PersonaName: snap.Persona.Name,
				Model:       snap.Config.Model,
				Turns:       len(snap.Turns),
				Text:        text,
				CreatedAt:   at.UTC(),
			}
			if err := store.Save(context.Background(), entry); err != nil {
				msg.err = fmt.Errorf("saved %s but archiving failed: %w", path, err)
			} else {
				msg.archiveID = entry.ID
			}
		}
		return msg
	}
}

func (m *Model) copyCmd() tea.Cmd {
	last := m.state.Snapshot().LastReply
	if last == "" {
		m.notice = "No reply to copy yet."
		return nil
	}
	copyFn := m.copy
	return func() tea.Msg {
		return copiedMsg{chars: len([]rune(last)), err: copyFn(last)}
	}
}
