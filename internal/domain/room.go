package domain

import "time"

type (
	RoomName string
	RoomID   string
)

// Room is the directory entry of a room. Name is display metadata; lookups go by ID.
type Room struct {
	ID        RoomID    `json:"id"`
	Name      RoomName  `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
