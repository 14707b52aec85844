package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Source is where the handler reads session events from
type Source interface {
	Subscribe(ctx context.Context, sessionID string, handler func(types.SessionEvent)) (func(), error)
}

// Handler serves a session change feed over websocket, relaying events
// from a Source. It speaks the protocol Feed consumes.
type Handler struct {
	source   Source
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a feed handler
func NewHandler(source Source, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		source: source,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // feed carries no credentials
			},
		},
	}
}

// connection is the per-socket state of the handler
type connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu   sync.Mutex
	subs map[string]func() // Protected by mu
}

func (c *connection) send(f frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return writeFrame(c.conn, f)
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	sock := &connection{conn: conn, subs: make(map[string]func())}
	defer sock.stopAll()

	for {
		fr, err := readFrame(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("Feed read error", zap.Error(err))
			}
			return
		}

		switch fr.Type {
		case frameSub:
			h.subscribe(ctx, sock, fr.SessionID)
		case frameUnsub:
			sock.stop(fr.SessionID)
		case framePing:
			_ = sock.send(frame{Type: framePong})
		default:
			_ = sock.send(frame{Type: frameError, Message: "unknown message type"})
		}
	}
}

func (h *Handler) subscribe(ctx context.Context, sock *connection, sessionID string) {
	if sessionID == "" {
		_ = sock.send(frame{Type: frameError, Message: "session_id is required"})
		return
	}

	sock.mu.Lock()
	_, exists := sock.subs[sessionID]
	sock.mu.Unlock()
	if exists {
		return
	}

	stop, err := h.source.Subscribe(ctx, sessionID, func(ev types.SessionEvent) {
		if err := sock.send(eventFrame(ev)); err != nil {
			h.logger.Debug("Failed to relay session event", zap.String("session_id", ev.SessionID), zap.Error(err))
		}
	})
	if err != nil {
		_ = sock.send(frame{Type: frameError, SessionID: sessionID, Message: err.Error()})
		return
	}

	sock.mu.Lock()
	sock.subs[sessionID] = stop
	sock.mu.Unlock()
}

func (c *connection) stop(sessionID string) {
	c.mu.Lock()
	stop, ok := c.subs[sessionID]
	delete(c.subs, sessionID)
	c.mu.Unlock()

	if ok {
		stop()
	}
}

func (c *connection) stopAll() {
	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string]func())
	c.mu.Unlock()

	for _, stop := range subs {
		stop()
	}
}
