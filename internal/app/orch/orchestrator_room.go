package orch

import (
	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join moves the connection into roomID. Being in another room means leaving it
// first; both steps happen under the connection lock. Re-joining the current
// room changes nothing but still delivers the joined snapshot and history.
func (o *Orchestrator) Join(sid core.SessionID, roomID domain.RoomID) error {
	sess, err := o.session(sid)
	if err != nil {
		return err
	}
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return core.Errorf(core.KindRoomNotFound, "room %s does not exist", roomID)
	}

	var pending []delivery
	err = sess.Exec(func(state app.SessionState, current domain.RoomID) (app.SessionState, domain.RoomID, error) {
		if state == app.StateInRoom && current != roomID {
			pending = o.removeFrom(sid, current, pending)
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(current)).Msg("left previous room")
		}
		res, added := room.AddMember(sess)
		pending = append(pending, delivery{room: room, res: res})
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Bool("rejoin", !added).Msg("joined room")
		return app.StateInRoom, roomID, nil
	})
	o.applyPolicy(pending...)
	return err
}

// Leave drops the current membership. Leaving while in no room is a no-op.
func (o *Orchestrator) Leave(sid core.SessionID) error {
	sess, err := o.session(sid)
	if err != nil {
		return err
	}

	var pending []delivery
	err = sess.Exec(func(state app.SessionState, current domain.RoomID) (app.SessionState, domain.RoomID, error) {
		if state != app.StateInRoom {
			return state, current, nil
		}
		pending = o.removeFrom(sid, current, pending)
		if room, ok := o.Rooms.GetRoom(current); ok {
			var res core.PublishResult
			res.Deliver(sess, core.LeftEvent(current))
			pending = append(pending, delivery{room: room, res: res})
		}
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(current)).Msg("left room")
		return app.StateUnbound, "", nil
	})
	o.applyPolicy(pending...)
	return err
}

// Disconnect closes the connection: transport close, logout and kicks all end here.
// Membership cleanup runs exactly once no matter how many callers race.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}

	var pending []delivery
	ran := sess.Finalize(func(state app.SessionState, current domain.RoomID) {
		if state == app.StateInRoom {
			pending = o.removeFrom(sid, current, pending)
		}
	})
	if !ran {
		return
	}
	o.Registry.Unbind(sid)
	sess.Signal().Close()
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
	o.applyPolicy(pending...)
}

func (o *Orchestrator) removeFrom(sid core.SessionID, roomID domain.RoomID, pending []delivery) []delivery {
	room, ok := o.Rooms.GetRoom(roomID)
	if !ok {
		return pending
	}
	if res, removed := room.RemoveMember(sid); removed {
		pending = append(pending, delivery{room: room, res: res})
	}
	return pending
}
