package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/samsaffron/jarvis/internal/config"
)

// Fixed request parameters.
const (
	Model       = "openai/gpt-4o"
	Temperature = 0.7
	MaxTokens   = 1000
)

// DefaultBaseURL is the OpenRouter API root; the client posts to
// DefaultBaseURL + "/chat/completions".
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// maxLoggedBody bounds how much of an error body is written to the log.
const maxLoggedBody = 2048

// defaultHTTPClient has no overall timeout: a request runs until it
// completes, fails, or the caller's context is cancelled.
var defaultHTTPClient = &http.Client{}

// Completer turns a conversation into the assistant's next reply.
type Completer interface {
	Complete(ctx context.Context, history []Turn) (string, error)
}

// Client sends conversations to the OpenRouter chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	headers    map[string]string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different OpenAI-compatible API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client from the OpenRouter section of the config.
// A missing API key is reported by Complete, not here.
func NewClient(cfg config.OpenRouterConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  cfg.APIKey,
		headers: map[string]string{
			"HTTP-Referer": cfg.AppURL,
			"X-Title":      cfg.AppTitle,
		},
		httpClient: defaultHTTPClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message *chatMessage `json:"message"`
	} `json:"choices"`
}

func buildMessages(turns []Turn) []chatMessage {
	messages := make([]chatMessage, len(turns))
	for i, t := range turns {
		messages[i] = chatMessage{Role: string(t.Role), Content: t.Content}
	}
	return messages
}

// Complete sends the persona followed by history and returns the trimmed
// reply. It makes exactly one HTTP request and never retries. Every error
// it returns is a *CompletionError.
func (c *Client) Complete(ctx context.Context, history []Turn) (string, error) {
	if c.apiKey == "" {
		err := &CompletionError{
			Kind:    ErrConfiguration,
			Message: "OpenRouter API key is not configured. Please set OPENROUTER_API_KEY or add openrouter.api_key to your config.",
		}
		c.logger.Error("completion not attempted", zap.Error(err))
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:       Model,
		Messages:    buildMessages(withPersona(history)),
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		return "", &CompletionError{Kind: ErrRequest, Message: "Failed to encode the request.", Err: err}
	}

	resp, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		c.logger.Error("completion request failed", zap.Error(err))
		return "", &CompletionError{
			Kind:    ErrTransport,
			Message: "Unable to reach the AI service. Please check your connection and try again.",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("reading completion response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return "", &CompletionError{
			Kind:       ErrTransport,
			StatusCode: resp.StatusCode,
			Message:    "The connection to the AI service was interrupted. Please try again.",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ce := classifyStatus(resp.StatusCode)
		c.logger.Error("completion API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(data), maxLoggedBody)))
		return "", ce
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		c.logger.Error("invalid completion response",
			zap.String("body", truncate(string(data), maxLoggedBody)),
			zap.Error(err))
		return "", &CompletionError{
			Kind:       ErrMalformedResponse,
			StatusCode: resp.StatusCode,
			Message:    "Invalid response format from the AI service.",
			Err:        err,
		}
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message == nil || parsed.Choices[0].Message.Content == "" {
		c.logger.Error("completion response has no content",
			zap.String("body", truncate(string(data), maxLoggedBody)))
		return "", &CompletionError{
			Kind:       ErrMalformedResponse,
			StatusCode: resp.StatusCode,
			Message:    "Invalid response format from the AI service.",
		}
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for key, value := range c.headers {
		if value == "" {
			continue
		}
		httpReq.Header.Set(key, value)
	}

	return c.httpClient.Do(httpReq)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
