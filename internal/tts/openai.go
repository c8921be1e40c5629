package tts

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/chadiek/interview-coach/internal/apperr"
)

// OpenAIClient synthesizes speech through an OpenAI-compatible /audio/speech endpoint.
type OpenAIClient struct {
	api   *openai.Client
	model string
	voice string
}

func NewOpenAIClient(apiKey, baseURL, model, voice string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	return &OpenAIClient{api: openai.NewClientWithConfig(cfg), model: model, voice: voice}
}

// Synthesize returns a WAV clip. The voice selects the language, so language is unused.
func (c *OpenAIClient) Synthesize(ctx context.Context, text, _ string) (Audio, error) {
	if strings.TrimSpace(text) == "" {
		return Audio{}, nil
	}
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.model),
		Input:          text,
		Voice:          openai.SpeechVoice(c.voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return Audio{}, apperr.Service("speech", "synthesize", err)
	}
	defer resp.Close()
	data, err := io.ReadAll(resp)
	if err != nil {
		return Audio{}, apperr.Service("speech", "read audio", err)
	}
	if len(data) == 0 {
		return Audio{}, apperr.Service("speech", "synthesize", errors.New("empty audio"))
	}
	return Audio{Data: data, MIMEType: "audio/wav"}, nil
}
