package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/chadiek/interview-coach/internal/apperr"
)

const whisperService = "transcription"

// WhisperClient transcribes clips through an OpenAI-compatible
// /audio/transcriptions endpoint (Groq whisper-large-v3-turbo by default).
type WhisperClient struct {
	api        *openai.Client
	model      string
	scratchDir string
}

// NewWhisperClient builds a client. Clips are staged in scratchDir before upload.
func NewWhisperClient(apiKey, baseURL, model, scratchDir string) *WhisperClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &WhisperClient{api: openai.NewClientWithConfig(cfg), model: model, scratchDir: scratchDir}
}

// ScratchPath is the single file a session's clips are written to; each clip overwrites the last.
func (w *WhisperClient) ScratchPath(sessionID string, audio []byte) string {
	name := "interview-coach-" + sanitize(sessionID) + extensionFor(audio)
	return filepath.Join(w.scratchDir, name)
}

// Transcribe writes the clip to its scratch file and uploads it.
func (w *WhisperClient) Transcribe(ctx context.Context, clip Clip) (string, error) {
	if len(clip.Audio) == 0 {
		return "", apperr.Service(whisperService, "transcribe", errors.New("empty audio clip"))
	}
	path := w.ScratchPath(clip.SessionID, clip.Audio)
	if err := os.WriteFile(path, clip.Audio, 0o600); err != nil {
		return "", apperr.Service(whisperService, "stage clip", fmt.Errorf("write %s: %w", path, err))
	}

	resp, err := w.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
	})
	if err != nil {
		return "", apperr.Service(whisperService, "transcribe", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func sanitize(id string) string {
	if id == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
}
