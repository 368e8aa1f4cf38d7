package signal

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleJoin: the joined snapshot and history replay are queued by the room itself.
func (ctl *SignalWSController) handleJoin(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type string        `json:"type"`
		Room domain.RoomID `json:"room"`
	}
	var p joinPayload
	if err := conn.codec.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.replyError(conn, core.Errorf(core.KindBadPayload, "join needs a room"))
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room_id", string(p.Room)).Msg("join")
	if err := ctl.Orch.Join(sid, p.Room); err != nil {
		ctl.replyError(conn, err)
	}
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	if err := ctl.Orch.Leave(sid); err != nil {
		ctl.replyError(conn, err)
	}
}

func (ctl *SignalWSController) handleSend(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type sendPayload struct {
		Type string        `json:"type"`
		Room domain.RoomID `json:"room,omitempty"`
		Body string        `json:"body"`
	}
	var p sendPayload
	if err := conn.codec.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad send payload")
		ctl.replyError(conn, core.Errorf(core.KindBadPayload, "bad send payload"))
		return
	}

	var err error
	if p.Room != "" {
		_, err = ctl.Orch.SendTo(sid, p.Room, p.Body)
	} else {
		_, err = ctl.Orch.Send(sid, p.Body)
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("send rejected")
		ctl.replyError(conn, err)
	}
}
