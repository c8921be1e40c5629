package interview

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/chadiek/interview-coach/internal/apperr"
	"github.com/chadiek/interview-coach/internal/llm"
	"github.com/chadiek/interview-coach/internal/logging"
	"github.com/chadiek/interview-coach/internal/session"
)

// GenerateFeedback fills in the report and the score if they are still
// missing. Each is produced at most once per session; calling again after
// both are set does nothing.
func (m *Machine) GenerateFeedback(ctx context.Context, st *session.State) error {
	var errs []error

	if st.FinalReport == "" {
		report, err := m.chat.Complete(ctx, m.reviewRequest(st, reportPrompt(st.Role, st.Level), false))
		switch {
		case err != nil:
			errs = append(errs, err)
		case report == "":
			errs = append(errs, apperr.Service("chat-completion", "report", errors.New("empty report")))
		default:
			st.FinalReport = report
		}
	}

	if st.FinalScore == nil {
		raw, err := m.chat.Complete(ctx, m.reviewRequest(st, scorePrompt(st.Role, st.Level), true))
		if err != nil {
			errs = append(errs, err)
		} else {
			score, perr := ParseScore(raw)
			if perr != nil {
				m.log.Warn("score response was not valid JSON; keeping raw text", logging.FieldSessionID, st.ID, "error", perr)
			}
			st.FinalScore = score
		}
	}

	return errors.Join(errs...)
}

func (m *Machine) reviewRequest(st *session.State, instruction string, asJSON bool) llm.Request {
	msgs := toLLM(st.InterviewMessages)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: instruction})
	return llm.Request{System: reviewerSystem, Messages: msgs, JSON: asJSON}
}

type scorePayload struct {
	Score         *float64 `json:"score"`
	Justification string   `json:"justification"`
}

// ParseScore decodes the score response. On malformed JSON it returns a score
// with no value whose justification is raw verbatim, together with a
// ParseError describing the failure. A score that is not an integer in
// 0..100 is dropped but its justification kept.
func ParseScore(raw string) (*session.Score, error) {
	var p scorePayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &p); err != nil {
		return &session.Score{Justification: raw}, &apperr.ParseError{Raw: raw, Cause: err}
	}
	out := &session.Score{Justification: p.Justification}
	if p.Score != nil && *p.Score == math.Trunc(*p.Score) && *p.Score >= 0 && *p.Score <= 100 {
		v := int(*p.Score)
		out.Value = &v
	}
	return out, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return t
	}
	t = strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 && !strings.HasPrefix(strings.TrimSpace(t[:i]), "{") {
		t = t[i+1:]
	}
	return strings.TrimSpace(t)
}
