package core

import (
	"fmt"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/google/uuid"
)

// Running out of randomness is an invariant violation, not a user-facing error.
func mustUUID(gen func() (uuid.UUID, error)) string {
	id, err := gen()
	if err != nil {
		panic(fmt.Errorf("generate id: %w", err))
	}
	return id.String()
}

func NewSessionID() SessionID { return SessionID(mustUUID(uuid.NewRandom)) }

func NewRoomID() domain.RoomID { return domain.RoomID(mustUUID(uuid.NewRandom)) }

// NewMessageID returns a time-ordered id so history entries sort by creation.
func NewMessageID() domain.MessageID { return domain.MessageID(mustUUID(uuid.NewV7)) }
