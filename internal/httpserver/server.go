// Package httpserver is the browser-facing adapter: a JSON API and a
// websocket channel that feed events to the interview state machine and
// return a rendered view of the session.
package httpserver

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/chadiek/interview-coach/internal/interview"
	"github.com/chadiek/interview-coach/internal/logging"
	"github.com/chadiek/interview-coach/internal/session"
	"github.com/chadiek/interview-coach/internal/tts"
)

//go:embed static/index.html
var staticFS embed.FS

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	Store   *session.Store
	Machine *interview.Machine
	Logger  *slog.Logger
	Limiter *RateLimiter
}

// Server bundles HTTP router and dependencies.
type Server struct {
	Router http.Handler

	store   *session.Store
	machine *interview.Machine
	log     *slog.Logger
	limiter *RateLimiter
}

// New constructs the HTTP server with routes.
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Limiter == nil {
		d.Limiter = NewRateLimiter(0, 0)
	}
	s := &Server{
		store:   d.Store,
		machine: d.Machine,
		log:     d.Logger,
		limiter: d.Limiter,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	s.register(e)

	s.Router = e
	return s
}

func (s *Server) register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/", s.index)

	api := e.Group("/api", s.sessionCookie)
	api.GET("/session", s.getSession)
	api.POST("/events/:name", s.postEvent, s.rateLimit)
	api.POST("/audio", s.postAudio, s.rateLimit)

	e.GET("/ws", s.serveWS, s.sessionCookie)
}

func (s *Server) index(c echo.Context) error {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (s *Server) getSession(c echo.Context) error {
	v, err := s.render(c.Request().Context(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) postEvent(c echo.Context) error {
	var p eventPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	ev, err := p.event(c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return s.respond(c, ev)
}

// maxAudioBytes bounds an uploaded answer clip.
const maxAudioBytes = 25 << 20

func (s *Server) postAudio(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxAudioBytes)
	fh, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing audio file")
	}
	audio, err := readFormFile(fh)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return s.respond(c, interview.SubmitAudio{Audio: audio})
}

func (s *Server) respond(c echo.Context, ev interview.Event) error {
	v, evErr, err := s.apply(c.Request().Context(), sessionID(c), ev)
	if err != nil {
		return err
	}
	if evErr != nil {
		status, body := errorResponse(evErr)
		body.Session = &v
		return c.JSON(status, body)
	}
	return c.JSON(http.StatusOK, v)
}

// apply runs ev against the session and renders the result under the same
// lock. evErr is the event's own failure; err means the session is gone.
func (s *Server) apply(ctx context.Context, id string, ev interview.Event) (v View, evErr error, err error) {
	err = s.store.Do(id, func(st *session.State) error {
		evErr = s.machine.Handle(ctx, st, ev)
		v = s.view(ctx, st)
		return nil
	})
	return v, evErr, err
}

func (s *Server) render(ctx context.Context, id string) (View, error) {
	var v View
	err := s.store.Do(id, func(st *session.State) error {
		v = s.view(ctx, st)
		return nil
	})
	return v, err
}

// view speaks the pending question, if any, and renders st.
func (s *Server) view(ctx context.Context, st *session.State) View {
	var audio tts.Audio
	var speechErr error
	if st.Phase == session.PhaseInterviewing {
		audio, speechErr = s.machine.Speak(ctx, st)
	}
	return buildView(st, s.machine.MaxQuestions(), audio, speechErr)
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, body := errorResponse(err)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			body.Error = msg
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Path(), logging.FieldSessionID, c.Get(sessionKey), "error", err)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
