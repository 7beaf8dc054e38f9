package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"wtl-assistant/internal/domain"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 30 * time.Second
)

// chatCompleter is the slice of the go-openai client used here.
// *goopenai.Client satisfies it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// UpstreamMessage is the provider's own description of the failure.
func (e *HTTPStatusError) UpstreamMessage() string {
	return e.Body
}

// Client is a focused OpenAI-compatible chat completions client. Every request
// carries the configured identification headers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	api        chatCompleter
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAppIdentity sets the referrer URL and application title sent upstream
// as HTTP-Referer and X-Title.
func WithAppIdentity(referer, title string) Option {
	return func(c *Client) {
		if referer = strings.TrimSpace(referer); referer != "" {
			c.headers["HTTP-Referer"] = referer
		}
		if title = strings.TrimSpace(title); title != "" {
			c.headers["X-Title"] = title
		}
	}
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai: api key must not be empty")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}

	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = withHeaders(c.resolvedHTTPClient(), c.headers)
	c.api = goopenai.NewClientWithConfig(cfg)
	return c, nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 30s timeout if none was set.
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/chat/completions"
}

// Chat sends one non-streaming completion request and returns the first
// choice's message.
func (c *Client) Chat(ctx context.Context, req domain.CompletionRequest) (domain.ChatMessage, error) {
	if strings.TrimSpace(req.Model) == "" {
		return domain.ChatMessage{}, errors.New("openai: model must not be empty")
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	res, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return domain.ChatMessage{}, c.translateError(err)
	}
	if len(res.Choices) == 0 {
		return domain.ChatMessage{}, fmt.Errorf("openai: no choices in response: %w", domain.ErrMalformedResponse)
	}
	msg := res.Choices[0].Message
	return domain.ChatMessage{Role: msg.Role, Content: msg.Content}, nil
}

func (c *Client) translateError(err error) error {
	url := chatURL(c.baseURL)

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPStatusCode
		if status == 0 {
			status = numericCode(apiErr.Code)
		}
		return &HTTPStatusError{StatusCode: status, URL: url, Body: apiErr.Message}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		body := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &HTTPStatusError{StatusCode: reqErr.HTTPStatusCode, URL: url, Body: body}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("openai: decode response: %w: %w", domain.ErrMalformedResponse, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("openai: request failed: %w", err)
	}
	return fmt.Errorf("openai: request failed: %w: %w", domain.ErrTransport, err)
}

// numericCode extracts an HTTP-like status from a provider error code, which
// OpenAI-compatible gateways send either as a number or a numeric string.
func numericCode(code any) int {
	switch v := code.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}
