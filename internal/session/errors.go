package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential is informational: nothing works until a key is entered.
	ErrNoCredential = errors.New("no API key configured: enter an API key to start chatting")
	// ErrNotReady means Send was called before a successful EnsureReady.
	ErrNotReady = errors.New("session is not ready: select a persona first")
	// ErrBusy means another operation on the same state is still in flight.
	ErrBusy = errors.New("session is busy with another request")
	// ErrEmptyMessage rejects blank input before anything is logged.
	ErrEmptyMessage = errors.New("message is empty")
)

// RemoteInitError reports a failure to build a client or prime a session.
type RemoteInitError struct {
	Op        string // "build client" or "start session"
	Model     string
	PersonaID string
	Err       error
}

func (e *RemoteInitError) Error() string {
	return fmt.Sprintf("%s for persona %s (model %s): %v", e.Op, e.PersonaID, e.Model, e.Err)
}

func (e *RemoteInitError) Unwrap() error { return e.Err }

// RemoteCallError reports a failed send on a ready session.
type RemoteCallError struct {
	PersonaID string
	Err       error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("send to persona %s: %v", e.PersonaID, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }
