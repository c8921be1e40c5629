package httpserver

import (
	"errors"
	"net/http"

	"github.com/chadiek/interview-coach/internal/apperr"
	"github.com/chadiek/interview-coach/internal/interview"
	"github.com/chadiek/interview-coach/internal/session"
)

type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
	Session   *View  `json:"session,omitempty"`
}

var errRateLimited = errors.New("too many events; slow down")

// errorResponse maps an error to a status code and a user-facing body.
func errorResponse(err error) (int, errorBody) {
	var (
		se  *apperr.ServiceError
		inv *interview.InvalidEventError
	)
	switch {
	case errors.As(err, &se):
		return http.StatusBadGateway, errorBody{Error: serviceMessage(se), Retryable: se.Retryable}
	case errors.As(err, &inv):
		return http.StatusConflict, errorBody{Error: inv.Error()}
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "session expired; reload the page"}
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, errorBody{Error: err.Error(), Retryable: true}
	default:
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	}
}

func serviceMessage(se *apperr.ServiceError) string {
	if se.Retryable {
		return "The " + se.Service + " service did not respond. Please try again."
	}
	return "The " + se.Service + " service rejected the request: " + se.Error()
}
