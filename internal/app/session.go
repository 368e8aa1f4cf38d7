package app

import (
	"context"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type SessionState int32

const (
	StateUnbound SessionState = iota
	StateInRoom
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateInRoom:
		return "in_room"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transition computes the next state of a connection from its current one.
type Transition func(state SessionState, room domain.RoomID) (SessionState, domain.RoomID, error)

// Session is the per-connection state machine: Unbound -> InRoom(room) -> Closed.
// mu serializes the intents of one connection. Room locks are only ever taken
// while mu is held, never the other way round.
type Session struct {
	core.MemberSession
	cancel context.CancelFunc

	mu     sync.Mutex
	state  SessionState
	roomID domain.RoomID

	closeOnce sync.Once
}

func NewSession(ms core.MemberSession, cancel context.CancelFunc) *Session {
	return &Session{MemberSession: ms, cancel: cancel}
}

// State reports the current state and room.
func (s *Session) State() (SessionState, domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.roomID
}

// Exec applies t atomically with respect to every other intent of this connection.
// On error the state is left untouched.
func (s *Session) Exec(t Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return core.ErrAlreadyClosed
	}
	next, room, err := t(s.state, s.roomID)
	if err != nil {
		return err
	}
	s.state, s.roomID = next, room
	return nil
}

// Finalize runs cleanup once per connection and moves it to Closed.
// Concurrent callers wait for the first one; only the first reports true.
func (s *Session) Finalize(cleanup func(state SessionState, room domain.RoomID)) bool {
	ran := false
	s.closeOnce.Do(func() {
		s.mu.Lock()
		cleanup(s.state, s.roomID)
		s.state, s.roomID = StateClosed, ""
		s.mu.Unlock()
		if s.cancel != nil {
			s.cancel()
		}
		ran = true
	})
	return ran
}
