package httpserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/chadiek/interview-coach/internal/logging"
)

// wsMessage is a server-to-browser frame. Types: "view", "error".
type wsMessage struct {
	Type      string `json:"type"`
	Session   *View  `json:"session,omitempty"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  65536,
	WriteBufferSize: 65536,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || strings.HasSuffix(origin, "://"+r.Host)
	},
}

// serveWS accepts eventPayload frames and answers each with the rendered
// view or an error. Only this goroutine writes to the connection.
func (s *Server) serveWS(c echo.Context) error {
	id := sessionID(c)
	log := s.log.With(logging.FieldSessionID, id)

	// A session created for this request must reach the browser with the
	// handshake; the upgrader ignores headers already set on the response.
	hdr := http.Header{}
	for _, ck := range c.Response().Header().Values("Set-Cookie") {
		hdr.Add("Set-Cookie", ck)
	}
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), hdr)
	if err != nil {
		log.Warn("ws upgrade failed", "error", err)
		return nil
	}
	defer func() { _ = conn.Close() }()
	conn.SetReadLimit(maxAudioBytes * 2)

	ctx := c.Request().Context()
	v, err := s.render(ctx, id)
	if err != nil {
		_ = writeWSError(conn, err, nil)
		return nil
	}
	if err := conn.WriteJSON(wsMessage{Type: "view", Session: &v}); err != nil {
		return nil
	}

	for {
		var p eventPayload
		if err := conn.ReadJSON(&p); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("ws read failed", "error", err)
			}
			return nil
		}
		if !s.limiter.Allow(id) {
			if err := writeWSError(conn, errRateLimited, nil); err != nil {
				return nil
			}
			continue
		}
		ev, err := p.event(p.Type)
		if err != nil {
			if err := writeWSError(conn, err, nil); err != nil {
				return nil
			}
			continue
		}

		v, evErr, err := s.apply(ctx, id, ev)
		switch {
		case err != nil:
			_ = writeWSError(conn, err, nil)
			return nil
		case evErr != nil:
			err = writeWSError(conn, evErr, &v)
		default:
			err = conn.WriteJSON(wsMessage{Type: "view", Session: &v})
		}
		if err != nil {
			log.Warn("ws write failed", "error", err)
			return nil
		}
	}
}

func writeWSError(conn *websocket.Conn, err error, v *View) error {
	_, body := errorResponse(err)
	return conn.WriteJSON(wsMessage{Type: "error", Session: v, Error: body.Error, Retryable: body.Retryable})
}
