package domain

import "time"

type MessageID string

// Message is immutable once the room has stamped it.
type Message struct {
	ID        MessageID `json:"id"`
	RoomID    RoomID    `json:"room"`
	Author    Identity  `json:"author"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"ts"`
}
