package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"personachat/internal/session"
)

// browserSession is one browser's chat state.
type browserSession struct {
	id       string
	state    *session.State
	created  time.Time
	lastUsed time.Time
}

// registry maps browser session ids to their states. Lookups refresh
// lastUsed; sweep drops sessions idle for longer than the limit.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*browserSession
	now      func() time.Time
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*browserSession), now: time.Now}
}

func (r *registry) create(apiKey string) *browserSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	bs := &browserSession{
		id:       uuid.NewString(),
		state:    session.NewState(apiKey),
		created:  now,
		lastUsed: now,
	}
	r.sessions[bs.id] = bs
	return bs
}

func (r *registry) get(id string) (*browserSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bs, ok := r.sessions[id]
	if ok {
		bs.lastUsed = r.now()
	}
	return bs, ok
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// sweep removes sessions not used within idle and returns how many went.
func (r *registry) sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	removed := 0
	for id, bs := range r.sessions {
		if !bs.lastUsed.After(cutoff) {
			serverLog().Debug("expiring browser session %s (created %s, idle since %s)", id, bs.created.Format(time.RFC3339), bs.lastUsed.Format(time.RFC3339))
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
