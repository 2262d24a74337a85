package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
)

var errStreamClosed = errors.New("dashboard stream closed")

const (
	envView   = "view"
	envClosed = "closed"
)

// wsEnvelope is the only message shape written to the socket.
type wsEnvelope struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	// TODO: restrict origins once the client hosts are known
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Dashboard stream
// @Description  Streams {type:"view", data} envelopes of a mounted dashboard every interval. A final {type:"closed"} is sent when the dashboard is unmounted.
// @Tags         dashboards
// @Param        id           path   string  true   "Session id"
// @Param        token        query  string  false  "JWT when the Authorization header cannot be set"
// @Param        interval     query  string  false  "Push interval, e.g. 500ms (max 10s)"
// @Param        interval_ms  query  int     false  "Push interval in ms"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /ws/dashboards/{id} [get]
func (h *Handler) wsDashboard(c *gin.Context) {
	uid, id := userID(c), c.Param("id")

	// fail before the upgrade so the client gets a plain 404
	if _, err := h.services.View(uid, id); err != nil {
		h.respondServiceError(c, "ws_view_failed", err, "session_id", id)
		return
	}

	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := h.sendView(conn, uid, id); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "session_id", id, "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "session_id", id, "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendView(conn, uid, id); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "session_id", id, "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000, bounded by maxInterval.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// startReader drains incoming frames so control messages are handled and closure is seen.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// sendView writes the current view. Once the dashboard is gone it writes a closed
// envelope and returns errStreamClosed.
func (h *Handler) sendView(conn *websocket.Conn, uid int, id string) error {
	view, err := h.services.View(uid, id)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err != nil {
		if werr := conn.WriteJSON(wsEnvelope{Type: envClosed, Error: errSessionGone}); werr != nil {
			return werr
		}
		return errStreamClosed
	}
	return conn.WriteJSON(wsEnvelope{Type: envView, Data: view})
}
