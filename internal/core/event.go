package core

import (
	"errors"

	"github.com/dkeye/Relay/internal/domain"
)

type EventType string

const (
	EventJoined       EventType = "joined"
	EventHistory      EventType = "history"
	EventMemberJoined EventType = "member_joined"
	EventMemberLeft   EventType = "member_left"
	EventMessage      EventType = "message"
	EventLeft         EventType = "left"
	EventError        EventType = "error"
	EventPong         EventType = "pong"
	EventWhoAmI       EventType = "whoami"
)

// Event is one outbound notification for a single connection.
// Only the fields relevant to Type are set; the transport picks its own wire shape.
type Event struct {
	Type     EventType
	Room     domain.RoomID
	RoomName domain.RoomName
	Identity domain.Identity
	Members  []domain.Identity
	Messages []domain.Message
	Message  domain.Message
	Kind     ErrorKind
	Detail   string
}

func JoinedEvent(room domain.Room, self domain.Identity, members []domain.Identity) Event {
	return Event{Type: EventJoined, Room: room.ID, RoomName: room.Name, Identity: self, Members: members}
}

func HistoryEvent(room domain.RoomID, messages []domain.Message) Event {
	return Event{Type: EventHistory, Room: room, Messages: messages}
}

func MemberJoinedEvent(room domain.RoomID, who domain.Identity) Event {
	return Event{Type: EventMemberJoined, Room: room, Identity: who}
}

func MemberLeftEvent(room domain.RoomID, who domain.Identity) Event {
	return Event{Type: EventMemberLeft, Room: room, Identity: who}
}

func MessageEvent(msg domain.Message) Event {
	return Event{Type: EventMessage, Room: msg.RoomID, Message: msg}
}

func LeftEvent(room domain.RoomID) Event {
	return Event{Type: EventLeft, Room: room}
}

// ErrorEvent reports err to the connection whose intent failed.
func ErrorEvent(err error) Event {
	ev := Event{Type: EventError, Kind: KindInternal, Detail: err.Error()}
	var e *Error
	if errors.As(err, &e) {
		ev.Kind = e.Kind
		if e.Detail != "" {
			ev.Detail = e.Detail
		}
	}
	return ev
}
