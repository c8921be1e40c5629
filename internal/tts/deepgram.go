package tts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"

	"github.com/chadiek/interview-coach/internal/apperr"
)

// DeepgramClient synthesizes speech over Deepgram's speak websocket and
// returns the collected linear16 stream as a WAV clip.
type DeepgramClient struct {
	apiKey      string
	model       string
	sampleRate  int
	encoding    string
	idleWindow  time.Duration
	maxDuration time.Duration
}

func NewDeepgramClient(apiKey, model string) *DeepgramClient {
	if model == "" {
		model = "aura-2-thalia-en"
	}
	return &DeepgramClient{
		apiKey:      apiKey,
		model:       model,
		sampleRate:  24000,
		encoding:    "linear16",
		idleWindow:  400 * time.Millisecond,
		maxDuration: 12 * time.Second,
	}
}

// Synthesize ignores language; the Deepgram model name encodes it.
func (d *DeepgramClient) Synthesize(ctx context.Context, text, _ string) (Audio, error) {
	if d.apiKey == "" {
		return Audio{}, apperr.Permanent("deepgram", "synthesize", fmt.Errorf("API key missing"))
	}
	if text == "" {
		return Audio{}, nil
	}

	options := &clientinterfaces.WSSpeakOptions{
		Model:      d.model,
		Encoding:   d.encoding,
		SampleRate: d.sampleRate,
	}

	var (
		mu          sync.Mutex
		pcm         bytes.Buffer
		lastRecv    int64
		seenAudio   int32
	)
	cb := &speakCallback{onBinary: func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		atomic.StoreInt64(&lastRecv, time.Now().UnixNano())
		atomic.StoreInt32(&seenAudio, 1)
		mu.Lock()
		pcm.Write(data)
		mu.Unlock()
		return nil
	}}

	dg, err := speak.NewWSUsingCallback(ctx, d.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
	if err != nil {
		return Audio{}, apperr.Service("deepgram", "create ws client", err)
	}
	defer dg.Stop()

	if ok := dg.Connect(); !ok {
		return Audio{}, apperr.Service("deepgram", "connect", fmt.Errorf("connect failed"))
	}
	if err := dg.SpeakWithText(text); err != nil {
		return Audio{}, apperr.Service("deepgram", "speak text", err)
	}
	if err := dg.Flush(); err != nil {
		slog.Warn("deepgram flush failed", "error", err)
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.Now().Add(d.maxDuration)
	for {
		select {
		case <-ctx.Done():
			return Audio{}, apperr.Service("deepgram", "synthesize", ctx.Err())
		case <-ticker.C:
		}
		done := time.Now().After(deadline)
		if atomic.LoadInt32(&seenAudio) == 1 {
			last := time.Unix(0, atomic.LoadInt64(&lastRecv))
			done = done || time.Since(last) > d.idleWindow
		}
		if done {
			break
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if pcm.Len() == 0 {
		return Audio{}, apperr.Service("deepgram", "synthesize", fmt.Errorf("no audio received"))
	}
	return Audio{Data: wavFromPCM16(pcm.Bytes(), d.sampleRate), MIMEType: "audio/wav"}, nil
}

type speakCallback struct{ onBinary func([]byte) error }

func (s *speakCallback) Open(*msginterfaces.OpenResponse) error         { return nil }
func (s *speakCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (s *speakCallback) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (s *speakCallback) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (s *speakCallback) Close(*msginterfaces.CloseResponse) error       { return nil }
func (s *speakCallback) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (s *speakCallback) Error(*msginterfaces.ErrorResponse) error       { return nil }
func (s *speakCallback) UnhandledEvent([]byte) error                    { return nil }
func (s *speakCallback) Binary(byMsg []byte) error {
	if s.onBinary != nil {
		return s.onBinary(byMsg)
	}
	return nil
}
