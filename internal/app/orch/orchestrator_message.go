package orch

import (
	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

// Send posts body into the room the connection is currently in.
func (o *Orchestrator) Send(sid core.SessionID, body string) (domain.Message, error) {
	return o.post(sid, "", body)
}

// SendTo posts body into roomID, which must be the connection's current room.
func (o *Orchestrator) SendTo(sid core.SessionID, roomID domain.RoomID, body string) (domain.Message, error) {
	if _, ok := o.Rooms.GetRoom(roomID); !ok {
		return domain.Message{}, core.Errorf(core.KindRoomNotFound, "room %s does not exist", roomID)
	}
	return o.post(sid, roomID, body)
}

// post routes through the room's own lock, so history order equals delivery order.
// An empty target means the current room.
func (o *Orchestrator) post(sid core.SessionID, target domain.RoomID, body string) (domain.Message, error) {
	sess, err := o.session(sid)
	if err != nil {
		return domain.Message{}, err
	}

	var (
		msg     domain.Message
		pending []delivery
	)
	err = sess.Exec(func(state app.SessionState, current domain.RoomID) (app.SessionState, domain.RoomID, error) {
		if state != app.StateInRoom {
			return state, current, core.Errorf(core.KindNotAMember, "not in any room")
		}
		if target != "" && target != current {
			return state, current, core.Errorf(core.KindNotAMember, "not a member of room %s", target)
		}
		room, ok := o.Rooms.GetRoom(current)
		if !ok {
			return state, current, core.Errorf(core.KindRoomNotFound, "room %s does not exist", current)
		}
		release, ok := o.Limiter.Reserve(sess.Identity().ID)
		if !ok {
			return state, current, core.ErrRateLimited
		}
		m, res, err := room.Post(sid, body)
		if err != nil {
			// a rejected message does not count against the sender
			release()
			return state, current, err
		}
		msg = m
		pending = append(pending, delivery{room: room, res: res})
		return state, current, nil
	})
	o.applyPolicy(pending...)
	return msg, err
}
