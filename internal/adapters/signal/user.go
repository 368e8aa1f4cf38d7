package signal

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/rs/zerolog/log"
)

// handleLogout is the graceful counterpart of a transport close.
func (ctl *SignalWSController) handleLogout(sid core.SessionID) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("logout")
	ctl.Orch.Disconnect(sid)
}

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	identity, roomID, err := ctl.Orch.WhoAmI(sid)
	if err != nil {
		ctl.replyError(conn, err)
		return
	}
	resp := core.Event{Type: core.EventWhoAmI, Identity: identity, Room: roomID}
	if roomID != "" {
		if room, ok := ctl.Orch.Rooms.GetRoom(roomID); ok {
			resp.RoomName = room.Room().Name
		}
	}
	ctl.reply(conn, resp)
}
