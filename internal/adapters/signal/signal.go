package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

const (
	defaultSendBuffer = 64
	defaultPingPeriod = 54 * time.Second
	defaultReadLimit  = 32768
	writeWait         = 5 * time.Second
)

// Options tune the per-connection transport.
type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = defaultReadLimit
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = defaultPingPeriod
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	return o
}

type SignalWSController struct {
	Orch *orch.Orchestrator
	opts Options
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	return &SignalWSController{
		Orch: o,
		opts: opts.withDefaults(),
	}
}

// WsSignalConn is the outbound queue of one websocket. It implements core.SignalConnection.
// Only writePump writes to the socket.
type WsSignalConn struct {
	conn  *websocket.Conn
	codec codec
	send  chan core.Event

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(ev core.Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- ev:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting events. writePump flushes what is queued and then closes the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

var upgrader = websocket.Upgrader{
	Subprotocols: []string{SubprotocolJSON, SubprotocolCBOR},
	CheckOrigin:  func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and serves the connection until it is closed.
// Every way out (read error, logout, kick, server shutdown) ends in Orch.Disconnect.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, identity domain.Identity) {
	// carry cookies set by middleware, a freshly minted client token included
	var respHeader http.Header
	if cookies := c.Writer.Header().Values("Set-Cookie"); len(cookies) > 0 {
		respHeader = http.Header{"Set-Cookie": cookies}
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn:  ws,
		codec: codecFor(ws.Subprotocol()),
		send:  make(chan core.Event, ctl.opts.SendBuffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sess := ctl.Orch.Connect(identity, conn, cancel)
	sid := sess.ID()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("identity", string(identity.ID)).
		Str("subprotocol", ws.Subprotocol()).Msg("new WS connection")

	var wg conc.WaitGroup
	wg.Go(func() { ctl.writePump(sid, conn) })
	wg.Go(func() { ctl.readPump(sid, conn) })
	wg.Go(func() {
		<-ctx.Done()
		ctl.Orch.Disconnect(sid)
	})
	wg.Wait()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("WS connection done")
}
