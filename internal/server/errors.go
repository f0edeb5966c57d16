package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"personachat/internal/archive"
	"personachat/internal/llm"
	"personachat/internal/persona"
	"personachat/internal/session"
)

var errSessionNotFound = errors.New("session not found")

// validationError marks a bad request body or parameter.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

func badRequest(msg string) error { return validationError{msg: msg} }

// statusFor maps an error to an HTTP status and a short machine-readable code.
func statusFor(err error) (int, string) {
	var credErr *llm.CredentialError
	var initErr *session.RemoteInitError
	var callErr *session.RemoteCallError
	var valErr validationError

	switch {
	case errors.Is(err, session.ErrNoCredential):
		return http.StatusUnauthorized, "credential_required"
	case errors.As(err, &credErr):
		return http.StatusUnauthorized, "credential_rejected"
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, persona.ErrNotFound):
		return http.StatusNotFound, "persona_not_found"
	case errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound, "transcript_not_found"
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, session.ErrNotReady):
		return http.StatusConflict, "not_ready"
	case errors.Is(err, session.ErrEmptyMessage), errors.As(err, &valErr):
		return http.StatusBadRequest, "invalid_request"
	case errors.As(err, &initErr), errors.As(err, &callErr):
		return http.StatusBadGateway, "remote_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	body := gin.H{"error": err.Error(), "code": code}
	if errors.Is(err, session.ErrNoCredential) {
		body["informational"] = true
	}
	if status >= http.StatusInternalServerError {
		serverLog().Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, body)
}
