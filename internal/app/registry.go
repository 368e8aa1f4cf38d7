package app

import (
	"context"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry tracks live connections by session id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*Session),
	}
}

// Bind registers a freshly authenticated connection. The session starts Unbound.
func (r *Registry) Bind(identity domain.Identity, signal core.SignalConnection, cancel context.CancelFunc) *Session {
	sid := core.NewSessionID()
	sess := NewSession(core.NewMemberSession(sid, identity, signal), cancel)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = sess
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("identity", string(identity.ID)).Msg("bound session")
	return sess
}

func (r *Registry) GetSession(sid core.SessionID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	return s, ok
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SessionIDs lists every live connection, used to drain them on shutdown.
func (r *Registry) SessionIDs() []core.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionID, 0, len(r.sessions))
	for sid := range r.sessions {
		out = append(out, sid)
	}
	return out
}
