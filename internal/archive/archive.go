// Package archive persists exported transcripts so they can be listed and
// re-read after the chat that produced them is gone.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no entry has the requested id.
	ErrNotFound = errors.New("transcript not found")
	// ErrInvalidStoreType is returned by New for an unknown driver name.
	ErrInvalidStoreType = errors.New("invalid archive store type")
	// ErrInvalidConfig is returned by New when a driver is missing settings.
	ErrInvalidConfig = errors.New("invalid archive configuration")
)

// Entry is one archived transcript.
type Entry struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	PersonaID   string    `json:"persona_id"`
	PersonaName string    `json:"persona_name"`
	Model       string    `json:"model"`
	Turns       int       `json:"turns"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store saves and retrieves archived transcripts.
type Store interface {
	// Save stores e, assigning ID and CreatedAt when they are zero.
	Save(ctx context.Context, e *Entry) error
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Entry, error)
	// List returns up to limit entries, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

func prepare(e *Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}
