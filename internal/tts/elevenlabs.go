package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chadiek/interview-coach/internal/apperr"
)

// ElevenLabsClient synthesizes MP3 clips over the ElevenLabs HTTP API.
type ElevenLabsClient struct {
	HTTPClient *http.Client
	APIKey     string
	VoiceID    string
	BaseURL    string
	ModelID    string
}

func NewElevenLabsClient(apiKey, voiceID string) *ElevenLabsClient {
	return &ElevenLabsClient{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		VoiceID:    voiceID,
		BaseURL:    "https://api.elevenlabs.io",
		ModelID:    "eleven_flash_v2_5",
	}
}

// Synthesize renders text in the given language (ISO 639-1) as MP3.
func (e *ElevenLabsClient) Synthesize(ctx context.Context, text, language string) (Audio, error) {
	if e.APIKey == "" || e.VoiceID == "" {
		return Audio{}, apperr.Permanent("elevenlabs", "synthesize", fmt.Errorf("api key or voice id missing"))
	}
	if strings.TrimSpace(text) == "" {
		return Audio{}, nil
	}

	u, err := url.Parse(strings.TrimRight(e.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(e.VoiceID))
	if err != nil {
		return Audio{}, apperr.Permanent("elevenlabs", "synthesize", err)
	}
	q := u.Query()
	q.Set("output_format", "mp3_44100_128")
	u.RawQuery = q.Encode()

	body := map[string]any{
		"model_id": e.ModelID,
		"text":     text,
		"voice_settings": map[string]any{
			"stability":         0.4,
			"similarity_boost":  0.7,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}
	if language != "" {
		body["language_code"] = language
	}
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return Audio{}, apperr.Permanent("elevenlabs", "synthesize", err)
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return Audio{}, apperr.Service("elevenlabs", "synthesize", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
		if resp.StatusCode == http.StatusUnauthorized {
			return Audio{}, apperr.Permanent("elevenlabs", "synthesize", err)
		}
		return Audio{}, apperr.Service("elevenlabs", "synthesize", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Audio{}, apperr.Service("elevenlabs", "read audio", err)
	}
	return Audio{Data: data, MIMEType: "audio/mpeg"}, nil
}
