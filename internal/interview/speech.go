package interview

import (
	"context"

	"github.com/chadiek/interview-coach/internal/logging"
	"github.com/chadiek/interview-coach/internal/session"
	"github.com/chadiek/interview-coach/internal/tts"
)

// Speak synthesizes the latest interviewer question if it has not been spoken
// yet, and starts that question's timer. Synthesis failure is returned but
// the question still counts as spoken and its timer still starts.
func (m *Machine) Speak(ctx context.Context, st *session.State) (tts.Audio, error) {
	if st.Phase != session.PhaseInterviewing {
		return tts.Audio{}, nil
	}
	last, ok := st.LastInterviewMessage()
	if !ok || last.Speaker != session.SpeakerInterviewer {
		return tts.Audio{}, nil
	}
	fp := messageFingerprint(len(st.InterviewMessages)-1, last.Text)
	if fp == st.LastSpokenFingerprint {
		return tts.Audio{}, nil
	}

	audio, err := m.voice.Synthesize(ctx, last.Text, m.language)
	st.LastSpokenFingerprint = fp
	st.QuestionStartedAt = m.now()
	if err != nil {
		m.log.Warn("speech synthesis failed", logging.FieldSessionID, st.ID, logging.FieldQuestion, st.QuestionCount, "error", err)
		return tts.Audio{}, err
	}
	return audio, nil
}
