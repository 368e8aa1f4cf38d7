package core

import "github.com/dkeye/Relay/internal/domain"

// memberSession implements MemberSession by pairing identity + transport.
type memberSession struct {
	sid      SessionID
	identity domain.Identity
	signal   SignalConnection
}

func NewMemberSession(sid SessionID, identity domain.Identity, signal SignalConnection) MemberSession {
	return &memberSession{sid: sid, identity: identity, signal: signal}
}

func (m *memberSession) ID() SessionID             { return m.sid }
func (m *memberSession) Identity() domain.Identity { return m.identity }
func (m *memberSession) Signal() SignalConnection  { return m.signal }
