package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"wtl-assistant/internal/domain"
)

// RelayError is a failed relay round trip. Notice is the text the widget
// shows the user for it.
type RelayError struct {
	StatusCode int
	Code       int
	Details    string
	Notice     string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("widget: relay status %d (code %d): %s", e.StatusCode, e.Code, e.Details)
}

type relayRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type relayResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Error   string `json:"error"`
	Details string `json:"details"`
	Code    int    `json:"code"`
}

// Client posts conversations to the chat relay over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(url string, opts ...ClientOption) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("widget: relay url must not be empty")
	}
	c := &Client{url: url, httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c, nil
}

// Send posts the conversation and returns the assistant's content.
func (c *Client) Send(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := json.Marshal(relayRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("widget: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("widget: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("widget: post to relay: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("widget: read relay response: %w", err)
	}
	var payload relayResponse
	decodeErr := json.Unmarshal(raw, &payload)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		relayErr := &RelayError{
			StatusCode: res.StatusCode,
			Code:       payload.Code,
			Details:    payload.Details,
			Notice:     GenericApology,
		}
		if decodeErr != nil {
			relayErr.Details = strings.TrimSpace(string(raw))
		}
		if relayErr.Code == http.StatusPaymentRequired || (relayErr.Code == 0 && res.StatusCode == http.StatusPaymentRequired) {
			relayErr.Notice = HighDemandNotice
		}
		return "", relayErr
	}

	if decodeErr != nil || payload.Content == "" {
		return "", &RelayError{StatusCode: res.StatusCode, Details: "reply carries no content", Notice: InvalidResponse}
	}
	return payload.Content, nil
}
