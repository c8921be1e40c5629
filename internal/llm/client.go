package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/chadiek/interview-coach/internal/apperr"
)

const serviceName = "chat-completion"

// Message roles accepted by the chat completion endpoint.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is one turn of conversation history.
type Message struct {
	Role    string
	Content string
}

// Request is a single chat completion call: exactly one leading system
// instruction followed by the conversation history.
type Request struct {
	System   string
	Messages []Message
	// JSON asks the model for a JSON object response.
	JSON bool
}

// Client talks to an OpenAI-compatible chat completion endpoint (Groq by default).
type Client struct {
	api   *openai.Client
	model string
}

// Option customizes a Client.
type Option func(*openai.ClientConfig)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *openai.ClientConfig) { c.HTTPClient = hc }
}

// NewClient builds a Client for the given credential, endpoint and model.
func NewClient(apiKey, baseURL, model string, opts ...Option) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	for _, o := range opts {
		o(&cfg)
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string { return c.model }

// Complete sends req and returns the trimmed text of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.System) == "" {
		return "", fmt.Errorf("llm: system instruction required")
	}
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: RoleSystem, Content: req.System})
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			return "", fmt.Errorf("llm: only the leading message may be a system instruction")
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	ccr := openai.ChatCompletionRequest{Model: c.model, Messages: msgs}
	if req.JSON {
		ccr.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return "", classify("complete", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.Service(serviceName, "complete", errors.New("empty choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classify maps go-openai errors onto the ServiceError taxonomy. Rejected
// credentials are not retryable; everything else is.
func classify(op string, err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return apperr.Permanent(serviceName, op, err)
	}
	return apperr.Service(serviceName, op, err)
}
