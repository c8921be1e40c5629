package httpserver

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/chadiek/interview-coach/internal/session"
	"github.com/chadiek/interview-coach/internal/tts"
)

// practiceGuide is shown in the lobby.
var practiceGuide = []string{
	"Rapid-fire questions, one at a time.",
	"Answer by voice: record, then submit the clip.",
	"Each question has a time limit; a late answer is recorded as a timeout.",
	"Skip a question you cannot answer, or quit to get feedback early.",
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// View is what the browser renders for one session.
type View struct {
	SessionID string        `json:"sessionId"`
	Phase     session.Phase `json:"phase"`
	Role      session.Role  `json:"role"`
	Level     session.Level `json:"level"`

	Roles  []session.Role  `json:"roles,omitempty"`
	Levels []session.Level `json:"levels,omitempty"`
	Guide  []string        `json:"guide,omitempty"`

	QuestionCount int     `json:"questionCount"`
	MaxQuestions  int     `json:"maxQuestions"`
	Progress      float64 `json:"progress"`

	Messages      []session.Message `json:"messages"`
	LobbyMessages []session.Message `json:"lobbyMessages"`

	Speech        *Speech `json:"speech,omitempty"`
	SpeechWarning string  `json:"speechWarning,omitempty"`

	ReportHTML      string `json:"reportHtml,omitempty"`
	ScoreLabel      string `json:"scoreLabel,omitempty"`
	Justification   string `json:"justification,omitempty"`
	FeedbackPending bool   `json:"feedbackPending,omitempty"`
}

// Speech is synthesized audio for the latest question.
type Speech struct {
	Audio    string `json:"audio"`
	MIMEType string `json:"mimeType"`
}

func buildView(st *session.State, maxQuestions int, audio tts.Audio, speechErr error) View {
	v := View{
		SessionID:     st.ID,
		Phase:         st.Phase,
		Role:          st.Role,
		Level:         st.Level,
		QuestionCount: st.QuestionCount,
		MaxQuestions:  maxQuestions,
		Progress:      progress(st.QuestionCount, maxQuestions),
		Messages:      copyMessages(st.InterviewMessages),
		LobbyMessages: copyMessages(st.LobbyMessages),
	}

	switch st.Phase {
	case session.PhaseLobby:
		v.Roles = session.Roles()
		v.Levels = session.Levels()
		v.Guide = practiceGuide
	case session.PhaseInterviewing:
		if !audio.Empty() {
			v.Speech = &Speech{Audio: base64.StdEncoding.EncodeToString(audio.Data), MIMEType: audio.MIMEType}
		}
		if speechErr != nil {
			v.SpeechWarning = "Voice playback is unavailable for this question; please read it above."
		}
	case session.PhaseFeedback:
		v.ReportHTML = renderMarkdown(st.FinalReport)
		v.ScoreLabel = scoreLabel(st.FinalScore)
		if st.FinalScore != nil {
			v.Justification = st.FinalScore.Justification
		}
		v.FeedbackPending = st.FinalReport == "" || st.FinalScore == nil
	}
	return v
}

func progress(count, max int) float64 {
	if max <= 0 {
		return 0
	}
	return min(float64(count)/float64(max), 1.0)
}

// scoreLabel renders "<n>/100", or "N/A" when the score could not be parsed.
func scoreLabel(s *session.Score) string {
	if s == nil {
		return ""
	}
	if s.Value == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d/100", *s.Value)
}

// renderMarkdown converts the report to HTML. Raw HTML in the source is
// dropped by goldmark's default renderer.
func renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "<pre>" + html.EscapeString(src) + "</pre>"
	}
	return buf.String()
}

// copyMessages copies m so the view can be encoded after the session lock is released.
func copyMessages(m []session.Message) []session.Message {
	if m == nil {
		return []session.Message{}
	}
	return slices.Clone(m)
}
