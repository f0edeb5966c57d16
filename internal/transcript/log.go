// Package transcript holds the ordered conversation log for one persona session
// and renders it for export.
package transcript

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserSpeaker is the export label for user turns.
const UserSpeaker = "You"

// Turn is one message in the conversation.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// User returns a user turn stamped with the current time.
func User(text string) Turn { return Turn{Role: RoleUser, Text: text, At: time.Now()} }

// Assistant returns an assistant turn stamped with the current time.
func Assistant(text string) Turn { return Turn{Role: RoleAssistant, Text: text, At: time.Now()} }

// Log is an append-only sequence of turns. The zero value is an empty log.
type Log struct {
	turns []Turn
}

// NewLog returns a log seeded with turns.
func NewLog(turns ...Turn) *Log {
	l := &Log{}
	l.Reset(turns...)
	return l
}

// Append adds a turn at the end.
func (l *Log) Append(t Turn) {
	l.turns = append(l.turns, t)
}

// All returns a copy of the turns in order.
func (l *Log) All() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *Log) Len() int { return len(l.turns) }

// Clear removes every turn.
func (l *Log) Clear() { l.turns = nil }

// Reset replaces the contents with turns.
func (l *Log) Reset(turns ...Turn) {
	l.turns = append([]Turn(nil), turns...)
}

// Window returns a copy of the last n turns (all of them if n <= 0 or n >= Len).
func (l *Log) Window(n int) []Turn {
	return Window(l.turns, n)
}

// LastAssistant returns the most recent assistant turn, for copy-to-clipboard.
func (l *Log) LastAssistant() (Turn, bool) {
	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Role == RoleAssistant {
			return l.turns[i], true
		}
	}
	return Turn{}, false
}

// Export renders the log as plain text: one "<Speaker>: <text>" paragraph per
// turn, separated by a blank line. Assistant turns are labelled with personaName.
func (l *Log) Export(personaName string) string {
	return Export(l.turns, personaName)
}

// Window returns a copy of the last n turns of turns.
func Window(turns []Turn, n int) []Turn {
	if n <= 0 || n >= len(turns) {
		n = len(turns)
	}
	out := make([]Turn, n)
	copy(out, turns[len(turns)-n:])
	return out
}

// Export renders turns the same way Log.Export does.
func Export(turns []Turn, personaName string) string {
	paragraphs := make([]string, 0, len(turns))
	for _, t := range turns {
		paragraphs = append(paragraphs, Speaker(t.Role, personaName)+": "+t.Text)
	}
	return strings.Join(paragraphs, "\n\n")
}

// Speaker returns the export label for role.
func Speaker(role Role, personaName string) string {
	if role == RoleUser {
		return UserSpeaker
	}
	return personaName
}

// Filename derives the export filename from the persona's short name,
// e.g. "luna_chat_20250102-150405.txt".
func Filename(shortName string, at time.Time) string {
	return fmt.Sprintf("%s_chat_%s.txt", slug(shortName), at.Format("20060102-150405"))
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "persona"
	}
	return out
}
