package core

import "github.com/dkeye/Relay/internal/domain"

// SessionID identifies one transport connection. It is never derived from the
// identity, so two connections of the same user are two distinct members.
type SessionID string

// MemberSession binds an identity and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	ID() SessionID
	Identity() domain.Identity
	Signal() SignalConnection
}
