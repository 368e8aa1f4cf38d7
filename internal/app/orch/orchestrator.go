package orch

import (
	"context"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator drives a connection's intents against the rooms.
// Each intent runs under the connection's own lock; rooms serialize their own state.
// Backpressure fallout is handled only after every lock is released.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
	Limiter  *app.RateLimiter
}

// delivery pairs a room with the outcome of one of its fan-outs.
type delivery struct {
	room core.RoomService
	res  core.PublishResult
}

// Connect binds an authenticated connection. cancel is invoked once the connection is closed.
func (o *Orchestrator) Connect(identity domain.Identity, signal core.SignalConnection, cancel context.CancelFunc) *app.Session {
	return o.Registry.Bind(identity, signal, cancel)
}

func (o *Orchestrator) session(sid core.SessionID) (*app.Session, error) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, core.ErrAlreadyClosed
	}
	return sess, nil
}

// WhoAmI reports the identity of a connection and the room it is in, if any.
func (o *Orchestrator) WhoAmI(sid core.SessionID) (domain.Identity, domain.RoomID, error) {
	sess, err := o.session(sid)
	if err != nil {
		return domain.Identity{}, "", err
	}
	state, room := sess.State()
	switch state {
	case app.StateClosed:
		return domain.Identity{}, "", core.ErrAlreadyClosed
	case app.StateInRoom:
		return sess.Identity(), room, nil
	default:
		return sess.Identity(), "", nil
	}
}

// Shutdown disconnects every live connection.
func (o *Orchestrator) Shutdown() {
	for _, sid := range o.Registry.SessionIDs() {
		o.Disconnect(sid)
	}
}

func (o *Orchestrator) applyPolicy(deliveries ...delivery) {
	for _, d := range deliveries {
		for _, slow := range d.res.Dropped {
			action := app.KickMember
			if o.Policy != nil {
				action = o.Policy.OnBackPressure(d.room, slow)
			}
			switch action {
			case app.KickMember:
				log.Warn().Str("module", "orch").Str("sid", string(slow.ID())).
					Str("room", string(d.room.Room().ID)).Msg("kicking slow member")
				o.Disconnect(slow.ID())
			case app.DropFrame, app.NoAction:
				log.Debug().Str("module", "orch").Str("sid", string(slow.ID())).
					Str("room", string(d.room.Room().ID)).Msg("dropped event for slow member")
			}
		}
	}
}
