package server

import (
	"time"

	"personachat/internal/llm"
	"personachat/internal/persona"
	"personachat/internal/session"
	"personachat/internal/transcript"
)

type personaView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Icon      string `json:"icon"`
	Category  string `json:"category"`
	Trait     string `json:"trait,omitempty"`
	Backstory string `json:"backstory,omitempty"`
	Greeting  string `json:"greeting"`
}

func newPersonaView(p persona.Record) personaView {
	return personaView{
		ID:        p.ID,
		Name:      p.Name,
		ShortName: p.ShortName,
		Icon:      p.Icon,
		Category:  p.Category,
		Trait:     p.Trait,
		Backstory: p.Backstory,
		Greeting:  p.GreetingText(),
	}
}

type turnView struct {
	Role    transcript.Role `json:"role"`
	Speaker string          `json:"speaker"`
	Text    string          `json:"text"`
	At      time.Time       `json:"at"`
}

type sessionView struct {
	ID            string               `json:"id"`
	Ready         bool                 `json:"ready"`
	HasCredential bool                 `json:"has_credential"`
	ChatID        string               `json:"chat_id,omitempty"`
	Persona       *personaView         `json:"persona,omitempty"`
	Config        llm.GenerationConfig `json:"config"`
	Turns         []turnView           `json:"turns"`
	LastReply     string               `json:"last_reply,omitempty"`
}

func newSessionView(id string, snap session.Snapshot) sessionView {
	v := sessionView{
		ID:            id,
		Ready:         snap.Ready,
		HasCredential: snap.HasCredential,
		ChatID:        snap.SessionID,
		Config:        snap.Config,
		Turns:         make([]turnView, 0, len(snap.Turns)),
		LastReply:     snap.LastReply,
	}
	if snap.Persona.ID != "" {
		pv := newPersonaView(snap.Persona)
		v.Persona = &pv
	}
	for _, t := range snap.Turns {
		v.Turns = append(v.Turns, turnView{
			Role:    t.Role,
			Speaker: transcript.Speaker(t.Role, snap.Persona.Speaker()),
			Text:    t.Text,
			At:      t.At,
		})
	}
	return v
}
