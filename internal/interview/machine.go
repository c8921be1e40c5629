// Package interview is the session state machine: it applies lobby, interview
// and feedback events to a session.State, calling the chat completion,
// transcription and speech adapters along the way.
package interview

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/chadiek/interview-coach/internal/apperr"
	"github.com/chadiek/interview-coach/internal/llm"
	"github.com/chadiek/interview-coach/internal/logging"
	"github.com/chadiek/interview-coach/internal/session"
	"github.com/chadiek/interview-coach/internal/transcript"
	"github.com/chadiek/interview-coach/internal/tts"
)

// Defaults for the interview loop.
const (
	DefaultMaxQuestions    = 20
	DefaultQuestionTimeout = 200 * time.Second
	DefaultLanguage        = "en"
)

// Chat produces one completion for a system instruction plus history.
type Chat interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Transcriber turns a captured clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip transcript.Clip) (string, error)
}

// Synthesizer renders text as playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (tts.Audio, error)
}

// Machine applies events to session state. It holds no session data itself;
// callers pass the one owned State on every call and must serialize calls
// per session.
type Machine struct {
	chat  Chat
	stt   Transcriber
	voice Synthesizer

	log          *slog.Logger
	now          func() time.Time
	maxQuestions int
	timeout      time.Duration
	language     string
}

// Option customizes a Machine.
type Option func(*Machine)

func WithLogger(l *slog.Logger) Option           { return func(m *Machine) { m.log = l } }
func WithClock(now func() time.Time) Option      { return func(m *Machine) { m.now = now } }
func WithMaxQuestions(n int) Option              { return func(m *Machine) { m.maxQuestions = n } }
func WithQuestionTimeout(d time.Duration) Option { return func(m *Machine) { m.timeout = d } }
func WithLanguage(lang string) Option            { return func(m *Machine) { m.language = lang } }

// New builds a Machine. A nil voice disables speech output.
func New(chat Chat, stt Transcriber, voice Synthesizer, opts ...Option) *Machine {
	if voice == nil {
		voice = tts.Nop{}
	}
	m := &Machine{
		chat:         chat,
		stt:          stt,
		voice:        voice,
		log:          slog.Default(),
		now:          time.Now,
		maxQuestions: DefaultMaxQuestions,
		timeout:      DefaultQuestionTimeout,
		language:     DefaultLanguage,
	}
	for _, o := range opts {
		o(m)
	}
	if m.maxQuestions <= 0 {
		m.maxQuestions = DefaultMaxQuestions
	}
	if m.timeout <= 0 {
		m.timeout = DefaultQuestionTimeout
	}
	return m
}

// MaxQuestions is the question count after which the interview ends.
func (m *Machine) MaxQuestions() int { return m.maxQuestions }

// Handle applies ev to st. A failed adapter call leaves st as it was, except
// that entering the feedback phase is kept even when report generation fails;
// GenerateFeedback retries it.
func (m *Machine) Handle(ctx context.Context, st *session.State, ev Event) error {
	log := m.log.With(logging.FieldSessionID, st.ID, logging.FieldPhase, st.Phase, logging.FieldEvent, ev.Name())
	start := m.now()
	err := m.dispatch(ctx, st, ev)
	if err != nil {
		var se *apperr.ServiceError
		if errors.As(err, &se) {
			log = log.With(logging.FieldService, se.Service, "retryable", se.Retryable)
		}
		log.Warn("event failed", "error", err)
		return err
	}
	log.Debug("event applied", logging.FieldQuestion, st.QuestionCount, "next_phase", st.Phase,
		logging.FieldDuration, m.now().Sub(start).Milliseconds())
	return nil
}

func (m *Machine) dispatch(ctx context.Context, st *session.State, ev Event) error {
	if _, ok := ev.(StartNewSession); ok {
		st.Reset(m.now())
		return nil
	}

	switch st.Phase {
	case session.PhaseLobby:
		switch e := ev.(type) {
		case SelectRole:
			if _, err := session.ParseRole(string(e.Role)); err != nil {
				return err
			}
			st.Role = e.Role
			return nil
		case SelectLevel:
			if _, err := session.ParseLevel(string(e.Level)); err != nil {
				return err
			}
			st.Level = e.Level
			return nil
		case SubmitCoordinatorQuestion:
			return m.askCoordinator(ctx, st, e.Text)
		case StartSession:
			m.startInterview(st)
			return nil
		}
	case session.PhaseInterviewing:
		switch e := ev.(type) {
		case SubmitAnswer:
			if strings.TrimSpace(e.Text) == "" {
				return errors.New("answer must not be empty")
			}
			return m.advance(ctx, st, e.Text, answerPrompt(st.Role, st.Level))
		case SubmitAudio:
			return m.handleAudio(ctx, st, e.Audio)
		case Skip:
			return m.advance(ctx, st, SkippedAnswer, skipPrompt(st.Role))
		case TimeoutElapsed:
			return m.advance(ctx, st, TimeoutAnswer, timeoutPrompt(st.Role))
		case Quit:
			return m.enterFeedback(ctx, st)
		}
	case session.PhaseFeedback:
		if _, ok := ev.(GenerateFeedback); ok {
			return m.GenerateFeedback(ctx, st)
		}
	}
	return &InvalidEventError{Phase: st.Phase, Event: ev.Name()}
}

func (m *Machine) askCoordinator(ctx context.Context, st *session.State, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("question must not be empty")
	}
	history := append(slices.Clone(st.LobbyMessages), session.Message{Speaker: session.SpeakerUser, Text: query})
	reply, err := m.chat.Complete(ctx, llm.Request{
		System:   coordinatorPrompt(st.Role, query),
		Messages: toLLM(history),
	})
	if err != nil {
		return err
	}
	st.LobbyMessages = append(history, session.Message{Speaker: session.SpeakerCoordinator, Text: reply})
	return nil
}

func (m *Machine) startInterview(st *session.State) {
	st.Phase = session.PhaseInterviewing
	st.QuestionCount = 1
	st.InterviewMessages = []session.Message{{Speaker: session.SpeakerInterviewer, Text: Opener(st.Role)}}
	st.LastSpokenFingerprint = ""
	st.QuestionStartedAt = time.Time{}
}

// advance records the candidate turn, asks for the next question and moves
// the counter. Nothing is committed unless the completion succeeds.
func (m *Machine) advance(ctx context.Context, st *session.State, candidate, system string) error {
	if last, ok := st.LastInterviewMessage(); !ok || last.Speaker != session.SpeakerInterviewer {
		return &InvalidEventError{Phase: st.Phase, Event: "answer without pending question"}
	}
	history := append(slices.Clone(st.InterviewMessages), session.Message{Speaker: session.SpeakerCandidate, Text: candidate})
	reply, err := m.chat.Complete(ctx, llm.Request{System: system, Messages: toLLM(history)})
	if err != nil {
		return err
	}
	if reply == "" {
		return apperr.Service("chat-completion", "next question", errors.New("empty reply"))
	}

	st.InterviewMessages = append(history, session.Message{Speaker: session.SpeakerInterviewer, Text: reply})
	st.QuestionCount++
	if st.QuestionCount > m.maxQuestions {
		return m.enterFeedback(ctx, st)
	}
	return nil
}

// handleAudio applies the dedup rule, then the lazy timeout check, then
// transcription. The fingerprint is recorded only once the clip has been
// fully processed, so a clip whose processing failed can be resubmitted.
func (m *Machine) handleAudio(ctx context.Context, st *session.State, audio []byte) error {
	if len(audio) == 0 {
		return errors.New("audio must not be empty")
	}
	fp := Fingerprint(audio)
	if fp == st.LastAudioFingerprint {
		m.log.Debug("duplicate audio ignored", logging.FieldSessionID, st.ID)
		return nil
	}

	if m.TimedOut(st) {
		if err := m.advance(ctx, st, TimeoutAnswer, timeoutPrompt(st.Role)); err != nil {
			return err
		}
		st.LastAudioFingerprint = fp
		return nil
	}

	text, err := m.stt.Transcribe(ctx, transcript.Clip{SessionID: st.ID, Audio: audio})
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		m.log.Info("empty transcription; no answer recorded", logging.FieldSessionID, st.ID)
		st.LastAudioFingerprint = fp
		return nil
	}
	if err := m.advance(ctx, st, text, answerPrompt(st.Role, st.Level)); err != nil {
		return err
	}
	st.LastAudioFingerprint = fp
	return nil
}

// TimedOut reports whether the current question has been open strictly
// longer than the timeout. A question that was never spoken has no start
// time and never times out.
func (m *Machine) TimedOut(st *session.State) bool {
	if st.QuestionStartedAt.IsZero() {
		return false
	}
	return m.now().Sub(st.QuestionStartedAt) > m.timeout
}

func (m *Machine) enterFeedback(ctx context.Context, st *session.State) error {
	st.Phase = session.PhaseFeedback
	return m.GenerateFeedback(ctx, st)
}

func toLLM(msgs []session.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, msg := range msgs {
		role := llm.RoleUser
		if msg.Speaker == session.SpeakerInterviewer || msg.Speaker == session.SpeakerCoordinator {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: msg.Text})
	}
	return out
}
