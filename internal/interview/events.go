package interview

import (
	"fmt"

	"github.com/chadiek/interview-coach/internal/session"
)

// Event is a user action or derived condition applied to a session.
type Event interface {
	Name() string
}

type (
	SelectRole                struct{ Role session.Role }
	SelectLevel               struct{ Level session.Level }
	SubmitCoordinatorQuestion struct{ Text string }
	StartSession              struct{}
	SubmitAnswer              struct{ Text string }
	// SubmitAudio is a captured voice answer. It is deduplicated by
	// fingerprint, checked for timeout, then transcribed into SubmitAnswer.
	SubmitAudio    struct{ Audio []byte }
	Skip           struct{}
	TimeoutElapsed struct{}
	Quit           struct{}
	// GenerateFeedback retries report/score generation after a failure.
	GenerateFeedback struct{}
	StartNewSession  struct{}
)

func (SelectRole) Name() string                { return "select_role" }
func (SelectLevel) Name() string               { return "select_level" }
func (SubmitCoordinatorQuestion) Name() string { return "coordinator_question" }
func (StartSession) Name() string              { return "start_session" }
func (SubmitAnswer) Name() string              { return "submit_answer" }
func (SubmitAudio) Name() string               { return "submit_audio" }
func (Skip) Name() string                      { return "skip" }
func (TimeoutElapsed) Name() string            { return "timeout" }
func (Quit) Name() string                      { return "quit" }
func (GenerateFeedback) Name() string          { return "generate_feedback" }
func (StartNewSession) Name() string           { return "start_new_session" }

// InvalidEventError reports an event the current phase does not accept.
type InvalidEventError struct {
	Phase session.Phase
	Event string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("event %s not accepted in phase %s", e.Event, e.Phase)
}
