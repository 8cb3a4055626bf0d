package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/venuelab/stagecraft/internal/adapters/calc"
	"github.com/venuelab/stagecraft/pkg/logger"
	"github.com/venuelab/stagecraft/pkg/metrics"
)

// Websocket session tuning.
const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 50 * time.Second

	// wsReplyBuffer bounds in-flight responses per session. The workers
	// send non-blockingly, so a session that stops reading loses replies
	// instead of wedging the pool.
	wsReplyBuffer = 256
)

// WSHandler upgrades connections and speaks calculation envelopes over
// them. One session carries any number of in-flight requests; responses
// come back in completion order, correlated by id.
type WSHandler struct {
	deps     Dependencies
	upgrader websocket.Upgrader
	sessions atomic.Int64
	logger   logger.Logger
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(deps Dependencies) *WSHandler {
	return &WSHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: logger.Get().Named("ws"),
	}
}

// HandleWS handles GET /ws requests.
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	count := h.sessions.Add(1)
	metrics.UpdateWebsocketSessions(int(count))
	defer func() {
		metrics.UpdateWebsocketSessions(int(h.sessions.Add(-1)))
	}()

	session := &wsSession{
		handler: h,
		conn:    conn,
		reply:   make(chan calc.Response, wsReplyBuffer),
		closed:  make(chan struct{}),
	}
	session.run(r)
}

// wsSession is one upgraded connection.
type wsSession struct {
	handler *WSHandler
	conn    *websocket.Conn
	reply   chan calc.Response
	closed  chan struct{}
}

func (s *wsSession) run(r *http.Request) {
	defer func() {
		close(s.closed)
		_ = s.conn.Close()
	}()

	go s.writePump()
	s.readPump(r)
}

// readPump decodes envelopes off the wire and submits them. It owns the
// connection's read side and returns when the peer goes away.
func (s *wsSession) readPump(r *http.Request) {
	_ = s.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		var req calc.Request
		if err := s.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.handler.logger.Warn(r.Context(), "websocket read failed", logger.Error(err))
			}
			return
		}

		if !req.Type.Valid() {
			s.push(calc.Response{ID: req.ID, Type: req.Type, Error: "unknown calculation type"})
			continue
		}

		if ok := s.handler.deps.Submit(r.Context(), req, s.reply); !ok {
			s.push(calc.Response{ID: req.ID, Type: req.Type, Error: ErrBackpressure.Error()})
		}
	}
}

// writePump is the connection's only writer: worker replies and session
// errors funnel through the same channel.
func (s *wsSession) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case resp := <-s.reply:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := s.conn.WriteJSON(resp); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// push queues a session-local response without ever blocking the read loop.
func (s *wsSession) push(resp calc.Response) {
	select {
	case s.reply <- resp:
	default:
	}
}
