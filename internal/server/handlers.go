package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"personachat/internal/archive"
	"personachat/internal/transcript"
)

type createSessionRequest struct {
	APIKey string `json:"api_key"`
}

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

type readyRequest struct {
	PersonaID   string   `json:"persona_id"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

type messageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.len()})
}

func (s *Server) handleListPersonas(c *gin.Context) {
	records := s.catalog.All()
	if category := c.Query("category"); category != "" {
		records = s.catalog.InCategory(category)
	}
	out := make([]personaView, 0, len(records))
	for _, p := range records {
		out = append(out, newPersonaView(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"personas":   out,
		"categories": s.catalog.Categories(),
		"default":    s.catalog.Default().ID,
	})
}

func (s *Server) handleGetPersona(c *gin.Context) {
	p, err := s.catalog.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPersonaView(p))
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, badRequest("invalid JSON body: "+err.Error()))
			return
		}
	}
	bs := s.sessions.create(strings.TrimSpace(req.APIKey))
	serverLog().Info("created browser session %s", bs.id)
	c.JSON(http.StatusCreated, newSessionView(bs.id, bs.state.Snapshot()))
}

func (s *Server) lookup(c *gin.Context) (*browserSession, bool) {
	bs, ok := s.sessions.get(c.Param("id"))
	if !ok {
		writeError(c, fmt.Errorf("%w: %s", errSessionNotFound, c.Param("id")))
		return nil, false
	}
	return bs, true
}

func (s *Server) handleGetSession(c *gin.Context) {
	bs, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionView(bs.id, bs.state.Snapshot()))
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.sessions.remove(c.Param("id")) {
		writeError(c, fmt.Errorf("%w: %s", errSessionNotFound, c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetCredential(c *gin.Context) {
	bs, ok := s.lookup(c)
	if !ok {
		return
	}
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest("invalid JSON body: "+err.Error()))
		return
	}
	bs.state.SetCredential(strings.TrimSpace(req.APIKey))
	c.JSON(http.StatusOK, newSessionView(bs.id, bs.state.Snapshot()))
}

func (s *Server) handleReady(c *gin.Context) {
	bs, ok := s.lookup(c)
	if !ok {
		return
	}
	var req readyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, badRequest("invalid JSON body: "+err.Error()))
			return
		}
	}

	personaID := req.PersonaID
	if personaID == "" {
		if current, ok := bs.state.Persona(); ok {
			personaID = current.ID
		} else {
			personaID = s.catalog.Default().ID
		}
	}
	p, err := s.catalog.Get(personaID)
	if err != nil {
		writeError(c, err)
		return
	}

	cfg := s.defaults
	if bs.state.Ready() {
		cfg = bs.state.Config()
	}
	if req.Model != "" {
		cfg.Model = req.Model
	}
	if req.Temperature != nil {
		cfg.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		cfg.MaxTokens = *req.MaxTokens
	}
	if err := cfg.Validate(); err != nil {
		writeError(c, badRequest(err.Error()))
		return
	}

	ready, err := s.manager.EnsureReady(c.Request.Context(), bs.state, p, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":         newSessionView(bs.id, bs.state.Snapshot()),
		"client_rebuilt":  ready.Client,
		"session_rebuilt": ready.Session,
		"log_reset":       ready.ResetLog,
	})
}

func (s *Server) handleMessage(c *gin.Context) {
	bs, ok := s.lookup(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, badRequest("invalid JSON body: "+err.Error()))
		return
	}

	reply, err := s.manager.Send(c.Request.Context(), bs.state, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reply":   reply,
		"session": newSessionView(bs.id, bs.state.Snapshot()),
	})
}

func (s *Server) handleClear(c *gin.Context) {
	bs, ok := s.lookup(c)
	if !ok {
		return
	}
	bs.state.ClearLog()
	c.JSON(http.StatusOK, newSessionView(bs.id, bs.state.Snapshot()))
}

// handleExport returns the transcript as a text attachment and archives it
// when an archive is configured.
func (s *Server) handleExport(c *gin.Context) {
	bs, ok := s.lookup(c)
	if !ok {
		return
	}
	snap := bs.state.Snapshot()
	if snap.Persona.ID == "" {
		writeError(c, badRequest("nothing to export: no persona selected"))
		return
	}

	text := transcript.Export(snap.Turns, snap.Persona.Speaker())
	filename := transcript.Filename(snap.Persona.Speaker(), s.now())

	if s.archive != nil {
		entry := &archive.Entry{
			SessionID:   snap.SessionID,
			PersonaID:   snap.Persona.ID,
			PersonaName: snap.Persona.Name,
			Model:       snap.Config.Model,
			Turns:       len(snap.Turns),
			Text:        text,
		}
		if err := s.archive.Save(c.Request.Context(), entry); err != nil {
			serverLog().Warn("archiving export for %s failed: %v", bs.id, err)
		} else {
			c.Header("X-Transcript-ID", entry.ID)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (s *Server) handleListTranscripts(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusOK, gin.H{"transcripts": []archive.Entry{}})
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, badRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	entries, err := s.archive.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"transcripts": entries})
}

func (s *Server) handleGetTranscript(c *gin.Context) {
	if s.archive == nil {
		writeError(c, fmt.Errorf("%w: %s", archive.ErrNotFound, c.Param("id")))
		return
	}
	entry, err := s.archive.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
