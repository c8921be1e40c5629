package interview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chadiek/interview-coach/internal/apperr"
	"github.com/chadiek/interview-coach/internal/llm"
	"github.com/chadiek/interview-coach/internal/session"
)

type harness struct {
	m     *Machine
	chat  *fakeChat
	stt   *fakeTranscriber
	voice *fakeVoice
	clock *fakeClock
	st    *session.State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		chat:  &fakeChat{report: "### 1. Executive Summary\nSolid.", score: `{"score": 72, "justification": "Clear answers."}`},
		stt:   &fakeTranscriber{text: "I work with Python and Go"},
		voice: &fakeVoice{},
		clock: &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	h.m = New(h.chat, h.stt, h.voice, WithClock(h.clock.Now))
	h.st = session.New("sess-1", h.clock.Now())
	return h
}

func (h *harness) handle(t *testing.T, ev Event) {
	t.Helper()
	require.NoError(t, h.m.Handle(context.Background(), h.st, ev))
}

func assertAlternates(t *testing.T, msgs []session.Message) {
	t.Helper()
	for i, m := range msgs {
		want := session.SpeakerInterviewer
		if i%2 == 1 {
			want = session.SpeakerCandidate
		}
		require.Equalf(t, want, m.Speaker, "message %d: %q", i, m.Text)
	}
}

func TestStartSession_OpenerPerRole(t *testing.T) {
	cases := map[session.Role]string{
		session.RoleSoftwareEngineer:    "Q1: Introduce yourself and your tech stack.",
		session.RoleSalesRepresentative: "Q1: Pitch yourself in 30 seconds.",
		session.RoleRetailAssociate:     "Q1: Why do you want to work in retail?",
	}
	for role, opener := range cases {
		t.Run(string(role), func(t *testing.T) {
			h := newHarness(t)
			h.handle(t, SelectRole{Role: role})
			h.handle(t, StartSession{})

			assert.Equal(t, session.PhaseInterviewing, h.st.Phase)
			assert.Equal(t, 1, h.st.QuestionCount)
			require.Len(t, h.st.InterviewMessages, 1)
			assert.Equal(t, session.Message{Speaker: session.SpeakerInterviewer, Text: opener}, h.st.InterviewMessages[0])
			assert.Zero(t, h.chat.count(), "opener must not call the model")
		})
	}
}

func TestLobby_SelectRejectsUnknownValues(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.m.Handle(context.Background(), h.st, SelectRole{Role: "Pilot"}))
	assert.Error(t, h.m.Handle(context.Background(), h.st, SelectLevel{Level: "Staff"}))
	assert.Equal(t, session.RoleSoftwareEngineer, h.st.Role)

	h.handle(t, SelectLevel{Level: session.LevelSenior})
	assert.Equal(t, session.LevelSenior, h.st.Level)
}

func TestCoordinator_AppendsExchangeWithoutPhaseChange(t *testing.T) {
	h := newHarness(t)
	h.handle(t, SelectRole{Role: session.RoleSalesRepresentative})
	h.handle(t, SubmitCoordinatorQuestion{Text: "How many questions are there?"})

	assert.Equal(t, session.PhaseLobby, h.st.Phase)
	require.Len(t, h.st.LobbyMessages, 2)
	assert.Equal(t, session.Message{Speaker: session.SpeakerUser, Text: "How many questions are there?"}, h.st.LobbyMessages[0])
	assert.Equal(t, session.SpeakerCoordinator, h.st.LobbyMessages[1].Speaker)

	req := h.chat.last()
	assert.Contains(t, req.System, Refusal)
	assert.Contains(t, req.System, "Sales Representative")
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
}

func TestCoordinator_FailureLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	h.chat.fail = errUpstream
	err := h.m.Handle(context.Background(), h.st, SubmitCoordinatorQuestion{Text: "what's the format?"})
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))
	assert.Empty(t, h.st.LobbyMessages)
}

func TestScenario_SoftwareEngineerJunior(t *testing.T) {
	h := newHarness(t)
	h.handle(t, SelectRole{Role: session.RoleSoftwareEngineer})
	h.handle(t, SelectLevel{Level: session.LevelJunior})
	h.handle(t, StartSession{})
	require.Equal(t, "Q1: Introduce yourself and your tech stack.", h.st.InterviewMessages[0].Text)
	require.Equal(t, 1, h.st.QuestionCount)

	h.handle(t, SubmitAnswer{Text: "I work with Python and Go"})
	assert.Equal(t, 2, h.st.QuestionCount)
	require.Len(t, h.st.InterviewMessages, 3)
	assert.Equal(t, session.Message{Speaker: session.SpeakerCandidate, Text: "I work with Python and Go"}, h.st.InterviewMessages[1])
	assert.Equal(t, session.SpeakerInterviewer, h.st.InterviewMessages[2].Speaker)

	req := h.chat.last()
	assert.Contains(t, req.System, "DO NOT repeat")
	assert.Contains(t, req.System, "Junior Software Engineer")
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleAssistant, req.Messages[0].Role)
	assert.Equal(t, llm.RoleUser, req.Messages[1].Role)

	for h.st.Phase == session.PhaseInterviewing {
		h.handle(t, Skip{})
	}
	assert.Equal(t, 21, h.st.QuestionCount)
	assert.Equal(t, session.PhaseFeedback, h.st.Phase)
	assertAlternates(t, h.st.InterviewMessages)
	assert.Equal(t, SkippedAnswer, h.st.InterviewMessages[3].Text)
	assert.NotEmpty(t, h.st.FinalReport)
	require.NotNil(t, h.st.FinalScore)
	require.NotNil(t, h.st.FinalScore.Value)
	assert.Equal(t, 72, *h.st.FinalScore.Value)
}

func TestQuit_GoesStraightToFeedback(t *testing.T) {
	h := newHarness(t)
	h.handle(t, StartSession{})
	for i := 0; i < 4; i++ {
		h.handle(t, SubmitAnswer{Text: "answer"})
	}
	require.Equal(t, 5, h.st.QuestionCount)

	h.handle(t, Quit{})
	assert.Equal(t, session.PhaseFeedback, h.st.Phase)
	assert.Equal(t, 5, h.st.QuestionCount)
	assert.Equal(t, "### 1. Executive Summary\nSolid.", h.st.FinalReport)
}

func TestAdvance_FailureLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	h.handle(t, StartSession{})
	before := h.st.Clone()

	h.chat.fail = errUpstream
	for _, ev := range []Event{SubmitAnswer{Text: "x"}, Skip{}, TimeoutElapsed{}} {
		err := h.m.Handle(context.Background(), h.st, ev)
		require.Error(t, err, ev.Name())
		assert.Equal(t, before, h.st, ev.Name())
	}
}

func TestInvalidEventsPerPhase(t *testing.T) {
	h := newHarness(t)
	var inv *InvalidEventError

	require.ErrorAs(t, h.m.Handle(context.Background(), h.st, Skip{}), &inv)
	assert.Equal(t, session.PhaseLobby, inv.Phase)
	require.ErrorAs(t, h.m.Handle(context.Background(), h.st, Quit{}), &inv)

	h.handle(t, StartSession{})
	require.ErrorAs(t, h.m.Handle(context.Background(), h.st, StartSession{}), &inv)
	require.ErrorAs(t, h.m.Handle(context.Background(), h.st, SelectRole{Role: session.RoleRetailAssociate}), &inv)
	assert.Error(t, h.m.Handle(context.Background(), h.st, SubmitAnswer{Text: "  "}))

	h.handle(t, Quit{})
	require.ErrorAs(t, h.m.Handle(context.Background(), h.st, SubmitAnswer{Text: "late"}), &inv)
}

func TestStartNewSession_ResetsEverything(t *testing.T) {
	h := newHarness(t)
	h.handle(t, SelectRole{Role: session.RoleRetailAssociate})
	h.handle(t, StartSession{})
	h.handle(t, Quit{})
	require.NotEmpty(t, h.st.FinalReport)

	h.clock.Advance(time.Minute)
	h.handle(t, StartNewSession{})
	assert.Equal(t, session.New("sess-1", h.clock.Now()), h.st)
}

func TestMaxQuestionsOption(t *testing.T) {
	h := newHarness(t)
	h.m = New(h.chat, h.stt, h.voice, WithClock(h.clock.Now), WithMaxQuestions(2))
	h.handle(t, StartSession{})
	h.handle(t, Skip{})
	assert.Equal(t, session.PhaseInterviewing, h.st.Phase)
	h.handle(t, Skip{})
	assert.Equal(t, session.PhaseFeedback, h.st.Phase)
	assert.Equal(t, 3, h.st.QuestionCount)
}

func TestAudio_DeduplicatesByFingerprint(t *testing.T) {
	h := newHarness(t)
	h.handle(t, StartSession{})
	clip := []byte("RIFF-clip-1")

	h.handle(t, SubmitAudio{Audio: clip})
	h.handle(t, SubmitAudio{Audio: clip})

	assert.Equal(t, 1, h.stt.calls)
	assert.Equal(t, 2, h.st.QuestionCount)
	assert.Equal(t, Fingerprint(clip), h.st.LastAudioFingerprint)
	assert.Equal(t, "I work with Python and Go", h.st.InterviewMessages[1].Text)

	h.handle(t, SubmitAudio{Audio: []byte("RIFF-clip-2")})
	assert.Equal(t, 2, h.stt.calls)
	assert.Equal(t, 3, h.st.QuestionCount)
}

func TestAudio_TranscriptionFailureIsSurfacedAndRetryable(t *testing.T) {
	h := newHarness(t)
	h.handle(t, StartSession{})
	h.stt.err = apperr.Service("transcription", "transcribe", errors.New("timeout"))
	clip := []byte("clip")

	err := h.m.Handle(context.Background(), h.st, SubmitAudio{Audio: clip})
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))
	assert.Empty(t, h.st.LastAudioFingerprint)
	assert.Equal(t, 1, h.st.QuestionCount)

	h.stt.err = nil
	h.handle(t, SubmitAudio{Audio: clip})
	assert.Equal(t, 2, h.stt.calls, "same clip must be retried after a failure")
	assert.Equal(t, 2, h.st.QuestionCount)
}

func TestAudio_EmptyTranscriptIsNoInput(t *testing.T) {
	h := newHarness(t)
	h.handle(t, StartSession{})
	h.stt.text = "   "
	h.handle(t, SubmitAudio{Audio: []byte("silence")})
	assert.Equal(t, 1, h.st.QuestionCount)
	assert.Len(t, h.st.InterviewMessages, 1)
	assert.Equal(t, Fingerprint([]byte("silence")), h.st.LastAudioFingerprint)
}

func TestTimeoutBoundary(t *testing.T) {
	cases := []struct {
		name        string
		elapsed     time.Duration
		wantTimeout bool
	}{
		{"below", 199 * time.Second, false},
		{"exactly_at", 200 * time.Second, false},
		{"just_above", 200*time.Second + time.Nanosecond, true},
		{"well_above", 10 * time.Minute, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.handle(t, StartSession{})
			_, err := h.m.Speak(context.Background(), h.st)
			require.NoError(t, err)

			h.clock.Advance(tc.elapsed)
			assert.Equal(t, tc.wantTimeout, h.m.TimedOut(h.st))

			h.handle(t, SubmitAudio{Audio: []byte("clip-" + tc.name)})
			if tc.wantTimeout {
				assert.Equal(t, TimeoutAnswer, h.st.InterviewMessages[1].Text)
				assert.Zero(t, h.stt.calls, "timed-out audio is not transcribed")
				assert.Contains(t, h.chat.last().System, "Time exceeded")
			} else {
				assert.Equal(t, "I work with Python and Go", h.st.InterviewMessages[1].Text)
				assert.Equal(t, 1, h.stt.calls)
			}
			assert.Equal(t, 2, h.st.QuestionCount)
		})
	}
}

func TestTimeout_NeverFiresBeforeQuestionIsSpoken(t *testing.T) {
	h := newHarness(t)
	h.handle(t, StartSession{})
	h.clock.Advance(time.Hour)
	assert.False(t, h.m.TimedOut(h.st))
}

func TestTimeoutElapsedEvent(t *testing.T) {
	h := newHarness(t)
	h.handle(t, StartSession{})
	h.handle(t, TimeoutElapsed{})
	assert.Equal(t, TimeoutAnswer, h.st.InterviewMessages[1].Text)
	assert.Equal(t, 2, h.st.QuestionCount)
}
