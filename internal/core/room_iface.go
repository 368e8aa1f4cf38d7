package core

import (
	"time"

	"github.com/dkeye/Relay/internal/domain"
)

const (
	DefaultHistoryCapacity = 100
	DefaultMaxMessageLen   = 4000
)

// RoomOptions are shared by every room a manager creates.
type RoomOptions struct {
	HistoryCapacity int
	MaxMessageLen   int
	Now             func() time.Time
}

func (o RoomOptions) withDefaults() RoomOptions {
	if o.HistoryCapacity <= 0 {
		o.HistoryCapacity = DefaultHistoryCapacity
	}
	if o.MaxMessageLen <= 0 {
		o.MaxMessageLen = DefaultMaxMessageLen
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// Deliver tries ms without blocking and records a failure as a drop.
func (p *PublishResult) Deliver(ms MemberSession, ev Event) {
	if err := ms.Signal().TrySend(ev); err != nil {
		p.drop(ms)
		return
	}
	p.SendTo++
}

func (p *PublishResult) drop(ms MemberSession) {
	for _, d := range p.Dropped {
		if d.ID() == ms.ID() {
			return
		}
	}
	p.Dropped = append(p.Dropped, ms)
}

// RoomService is the core-facing API of a room.
// It owns the membership set and the history buffer but never touches transport resources.
// Every mutation and the events it produces happen under one room lock.
type RoomService interface {
	Room() domain.Room
	MemberCount() int
	// MembersSnapshot lists member identities in join order.
	MembersSnapshot() []domain.Identity
	History() []domain.Message
	HasMember(sid SessionID) bool

	// AddMember is idempotent. A new member is announced to everybody else;
	// the joiner always receives the joined snapshot followed by the history replay.
	AddMember(ms MemberSession) (PublishResult, bool)
	// RemoveMember is idempotent. A removal is announced to the remaining members.
	RemoveMember(sid SessionID) (PublishResult, bool)
	// Post stamps body, appends it to history and fans it out to all members, sender included.
	Post(from SessionID, body string) (domain.Message, PublishResult, error)
}

type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}

// RoomManager is the room registry. Rooms are never deleted.
type RoomManager interface {
	CreateRoom(name string) (RoomService, error)
	GetRoom(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
}
