// Package server exposes the session manager over an HTTP/JSON API for a
// browser front end. Each browser session gets its own session.State.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"personachat/internal/archive"
	"personachat/internal/llm"
	"personachat/internal/logging"
	"personachat/internal/persona"
	"personachat/internal/session"
)

const (
	shutdownTimeout = 5 * time.Second

	// DefaultSessionIdle is how long an unused browser session is kept.
	DefaultSessionIdle = 30 * time.Minute
)

// Options wires the server's collaborators. Archive may be nil.
type Options struct {
	Manager  *session.Manager
	Catalog  *persona.Catalog
	Archive  archive.Store
	Defaults llm.GenerationConfig

	// SessionIdle expires browser sessions unused for this long while Run
	// is serving. Zero means DefaultSessionIdle; negative disables expiry.
	SessionIdle time.Duration
}

// Server is the HTTP API.
type Server struct {
	manager  *session.Manager
	catalog  *persona.Catalog
	archive  archive.Store
	defaults llm.GenerationConfig
	sessions *registry
	idle     time.Duration
	engine   *gin.Engine
	now      func() time.Time
}

func serverLog() *logging.Logger { return logging.Get(logging.CategoryServer) }

// New builds the server and its routes.
func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	defaults := opts.Defaults
	if defaults.Model == "" {
		defaults = llm.DefaultGenerationConfig()
	}

	s := &Server{
		manager:  opts.Manager,
		catalog:  opts.Catalog,
		archive:  opts.Archive,
		defaults: defaults,
		sessions: newRegistry(),
		idle:     opts.SessionIdle,
		now:      time.Now,
	}
	if s.idle == 0 {
		s.idle = DefaultSessionIdle
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.GET("/personas", s.handleListPersonas)
	api.GET("/personas/:id", s.handleGetPersona)

	sessions := api.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id", s.handleGetSession)
	sessions.DELETE("/:id", s.handleDeleteSession)
	sessions.POST("/:id/credential", s.handleSetCredential)
	sessions.POST("/:id/ready", s.handleReady)
	sessions.POST("/:id/messages", s.handleMessage)
	sessions.POST("/:id/clear", s.handleClear)
	sessions.GET("/:id/export", s.handleExport)

	api.GET("/transcripts", s.handleListTranscripts)
	api.GET("/transcripts/:id", s.handleGetTranscript)

	s.engine = r
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	swept := make(chan struct{})
	go func() {
		defer close(swept)
		s.sweepSessions(sweepCtx)
	}()
	defer func() {
		stopSweep()
		<-swept
	}()

	errc := make(chan error, 1)
	go func() {
		serverLog().Info("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	serverLog().Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errc
	return nil
}

// sweepSessions expires idle browser sessions until ctx is done.
func (s *Server) sweepSessions(ctx context.Context) {
	if s.idle < 0 {
		return
	}
	interval := s.idle / 2
	if interval <= 0 {
		interval = s.idle
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.sweep(s.idle); n > 0 {
				serverLog().Info("expired %d idle browser sessions", n)
			}
		}
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		serverLog().Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
