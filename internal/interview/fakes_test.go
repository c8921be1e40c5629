package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chadiek/interview-coach/internal/apperr"
	"github.com/chadiek/interview-coach/internal/llm"
	"github.com/chadiek/interview-coach/internal/transcript"
	"github.com/chadiek/interview-coach/internal/tts"
)

// fakeChat answers by request kind so one instance can drive a whole session.
type fakeChat struct {
	mu       sync.Mutex
	requests []llm.Request
	fail     error
	report   string
	score    string
	next     int
}

func (f *fakeChat) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.fail != nil {
		return "", f.fail
	}
	last := ""
	if n := len(req.Messages); n > 0 {
		last = req.Messages[n-1].Content
	}
	switch {
	case strings.Contains(last, "QUALITATIVE FEEDBACK REPORT"):
		return f.report, nil
	case req.JSON:
		return f.score, nil
	case strings.Contains(req.System, "Practice Coordinator"):
		return "The session has 20 questions.", nil
	default:
		f.next++
		return fmt.Sprintf("Noted. Question %d?", f.next+1), nil
	}
}

func (f *fakeChat) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeChat) last() llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeTranscriber struct {
	calls int
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ transcript.Clip) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeVoice struct {
	calls int
	err   error
}

func (f *fakeVoice) Synthesize(_ context.Context, text, _ string) (tts.Audio, error) {
	f.calls++
	if f.err != nil {
		return tts.Audio{}, f.err
	}
	return tts.Audio{Data: []byte("audio:" + text), MIMEType: "audio/wav"}, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var errUpstream = apperr.Service("chat-completion", "complete", errors.New("503 service unavailable"))
