package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/pages"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// Envelope types sent to the browser.
const (
	envSnapshot = "snapshot"
	envPatch    = "patch"
	envError    = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// snapshotData is the full document sent once per connection.
type snapshotData struct {
	Session  string        `json:"session"`
	Page     string        `json:"page"`
	Title    string        `json:"title"`
	Elements []dom.Element `json:"elements"`
}

// newUpgrader builds the HTTP -> WebSocket upgrader. Pages served by the
// dashboard's own host may always connect; allowed adds origins, "*" any.
func newUpgrader(allowed []string) *websocket.Upgrader {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || set["*"] || set[origin] {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
}

// @Summary      Live page session
// @Description  Upgrades to a WebSocket, sends a document snapshot, then coalesced patches. Accepts {"type":"input|change|click","id":"...","value":"..."} events.
// @Tags         pages
// @Param        page  query  string  false  "Page identifier"  Enums(home,temperatures,settings,pv_info,temperature_graphs)
// @Failure      404   {object}  map[string]string
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	page := c.DefaultQuery("page", pages.Home)
	if _, ok := pages.Lookup(page); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownPage})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	sess, err := h.services.Sessions.Open(c.Request.Context(), page)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_session_open_failed", "err", err, "page", page)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(wsEnvelope{Type: envError, Error: err.Error()})
		return
	}
	defer h.services.Sessions.Close(sess.ID)

	// Subscribe before the snapshot so no update falls between the two.
	sub := sess.Doc.Subscribe()
	defer sub.Close()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine dispatches browser events and detects disconnects.
	done := make(chan struct{})
	go h.startReader(conn, sess, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	err = h.write(conn, wsEnvelope{Type: envSnapshot, Data: snapshotData{
		Session:  sess.ID,
		Page:     sess.Page,
		Title:    sess.Title,
		Elements: sess.Doc.Snapshot(),
	}})
	if err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	// Writer/select loop.
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
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-sub.C():
			changed := sub.Drain()
			if len(changed) == 0 {
				continue
			}
			if err := h.write(conn, wsEnvelope{Type: envPatch, Data: changed}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

// Helper: startReader decodes browser events and hands them to the session.
// Malformed frames are logged and skipped.
func (h *Handler) startReader(conn *websocket.Conn, sess *pages.Session, done chan<- struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err, "session", sess.ID)
			}
			return
		}
		var ev pages.Event
		if err := decodeEvent(data, &ev); err != nil {
			if h.log != nil {
				h.log.Warnw("ws_bad_event", "err", err, "session", sess.ID)
			}
			continue
		}
		sess.Dispatch(ev)
	}
}

var errEmptyEvent = errors.New("event needs type and id")

func decodeEvent(data []byte, ev *pages.Event) error {
	if err := json.Unmarshal(data, ev); err != nil {
		return err
	}
	if ev.Type == "" || ev.ID == "" {
		return errEmptyEvent
	}
	return nil
}
