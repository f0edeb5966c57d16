package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned when the provider answered with no candidates,
// e.g. because the prompt was blocked.
var ErrEmptyResponse = errors.New("model returned an empty response")

// CredentialError reports a missing or rejected API credential.
type CredentialError struct {
	Provider Provider
	Err      error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s credential rejected: %v", e.Provider, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// IsCredentialError reports whether err carries a CredentialError.
func IsCredentialError(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
