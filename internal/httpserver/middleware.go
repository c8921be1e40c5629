package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chadiek/interview-coach/internal/logging"
)

const (
	sessionCookieName = "coach_session"
	sessionKey        = "sessionID"
)

// sessionCookie binds the request to a session, creating one when the
// cookie is missing or names an evicted session.
func (s *Server) sessionCookie(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var id string
		if ck, err := c.Cookie(sessionCookieName); err == nil {
			id = ck.Value
		}
		id, created := s.store.Ensure(id)
		if created {
			c.SetCookie(&http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			s.log.Info("session created", logging.FieldSessionID, id)
		}
		c.Set(sessionKey, id)
		return next(c)
	}
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.limiter.Allow(sessionID(c)) {
			return errRateLimited
		}
		return next(c)
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(sessionKey).(string)
	return id
}
