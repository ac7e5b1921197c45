package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/huddle-app/huddle/internal/app"
	"github.com/huddle-app/huddle/internal/config"
	"github.com/huddle-app/huddle/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the live websocket connections and feeds their
// commands into the coordinator. It implements app.Emitter.
type Controller struct {
	Coord *app.Coordinator
	cfg   *config.Config

	mu    sync.RWMutex
	conns map[domain.ConnID]*wsConn
}

func NewController(cfg *config.Config) *Controller {
	return &Controller{
		cfg:   cfg,
		conns: make(map[domain.ConnID]*wsConn),
	}
}

type wsConn struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection's pumps. Each
// connection gets its own identifier; user and room identity are only
// attached once the client sends join-room.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		id:   domain.ConnID(uuid.NewString()),
		conn: ws,
		send: make(chan []byte, 32),
	}
	ctl.addConn(conn)
	log.Info().Str("module", "adapters.signal").Str("conn", string(conn.id)).Msg("client connected")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	}()
}

func (ctl *Controller) addConn(c *wsConn) {
	ctl.mu.Lock()
	ctl.conns[c.id] = c
	ctl.mu.Unlock()
}

func (ctl *Controller) removeConn(id domain.ConnID) {
	ctl.mu.Lock()
	delete(ctl.conns, id)
	ctl.mu.Unlock()
}

// Unicast implements app.Emitter. Delivery is non-blocking; a slow
// consumer loses the event rather than stalling the coordinator.
func (ctl *Controller) Unicast(id domain.ConnID, event string, data any) {
	ctl.mu.RLock()
	c, ok := ctl.conns[id]
	ctl.mu.RUnlock()
	if !ok {
		return
	}
	b, err := encodeEnvelope(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Str("event", event).Msg("encode envelope")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "adapters.signal").Str("conn", string(id)).Str("event", event).Msg("unicast dropped")
	}
}
