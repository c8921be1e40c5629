package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chadiek/interview-coach/internal/apperr"
)

const assemblyService = "assemblyai"

// AssemblyAIClient transcribes clips with AssemblyAI's batch API: upload the
// bytes, create a transcript job, then poll it until it settles.
type AssemblyAIClient struct {
	HTTPClient   *http.Client
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// NewAssemblyAIClient creates a client for the public AssemblyAI endpoint.
func NewAssemblyAIClient(apiKey string) *AssemblyAIClient {
	return &AssemblyAIClient{
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		APIKey:       apiKey,
		BaseURL:      "https://api.assemblyai.com",
		PollInterval: 500 * time.Millisecond,
	}
}

// Transcribe uploads the clip and blocks until the transcript completes or ctx ends.
func (a *AssemblyAIClient) Transcribe(ctx context.Context, clip Clip) (string, error) {
	if a.APIKey == "" {
		return "", apperr.Permanent(assemblyService, "transcribe", fmt.Errorf("AssemblyAI API key is empty"))
	}

	var up uploadResponse
	if err := a.do(ctx, http.MethodPost, "/v2/upload", "application/octet-stream", bytes.NewReader(clip.Audio), &up); err != nil {
		return "", apperr.Service(assemblyService, "upload", err)
	}
	if up.UploadURL == "" {
		return "", apperr.Service(assemblyService, "upload", fmt.Errorf("missing upload_url"))
	}

	body, _ := json.Marshal(transcriptRequest{AudioURL: up.UploadURL})
	var job transcriptResponse
	if err := a.do(ctx, http.MethodPost, "/v2/transcript", "application/json", bytes.NewReader(body), &job); err != nil {
		return "", apperr.Service(assemblyService, "create transcript", err)
	}
	slog.Debug("assemblyai transcript queued", "id", job.ID, "bytes", len(clip.Audio))

	ticker := time.NewTicker(a.PollInterval)
	defer ticker.Stop()
	for {
		switch job.Status {
		case "completed":
			return strings.TrimSpace(job.Text), nil
		case "error":
			return "", apperr.Service(assemblyService, "transcribe", fmt.Errorf("transcript %s failed: %s", job.ID, job.Error))
		}
		select {
		case <-ctx.Done():
			return "", apperr.Service(assemblyService, "poll", ctx.Err())
		case <-ticker.C:
		}
		if err := a.do(ctx, http.MethodGet, "/v2/transcript/"+job.ID, "", nil, &job); err != nil {
			return "", apperr.Service(assemblyService, "poll", err)
		}
	}
}

func (a *AssemblyAIClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", a.APIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
