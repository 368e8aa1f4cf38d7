package domain

import "time"

// Member represents a connection's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Identity Identity
	JoinedAt time.Time
}

// NewMember avoids raw literals in the room and keeps construction obvious.
func NewMember(identity Identity, joinedAt time.Time) *Member {
	return &Member{Identity: identity, JoinedAt: joinedAt}
}
