package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"wtl-assistant/internal/domain"
	"wtl-assistant/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	genericFailure    = "An error occurred while processing your request"
	invalidRequest    = "Invalid request body"
)

type Relayer interface {
	Relay(ctx context.Context, in usecase.RelayInput) (domain.ChatMessage, error)
}

// chatRequest mirrors the wire body. Messages stays raw so a missing or
// non-array value can be told apart from an empty one.
type chatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Code    int    `json:"code"`
}

type Handler struct {
	relay Relayer
}

func NewHandler(r Relayer) (*Handler, error) {
	if r == nil {
		return nil, errors.New("handler: relayer must not be nil")
	}
	return &Handler{relay: r}, nil
}

// Handle serves the chat relay behind API Gateway.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = newUUID()
	}

	status, payload := h.serve(ctx, event.HTTPMethod, eventBody(event), correlationID)
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("handler: marshal response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}, nil
}

func (h *Handler) serve(ctx context.Context, method string, body []byte, correlationID string) (int, any) {
	logger := slog.With("correlation_id", correlationID)

	if method != "" && !strings.EqualFold(method, http.MethodPost) {
		return http.StatusMethodNotAllowed, errorResponse{
			Error:   "Method not allowed",
			Details: fmt.Sprintf("%s is not supported", method),
			Code:    http.StatusMethodNotAllowed,
		}
	}

	messages, err := decodeMessages(body)
	if err != nil {
		logger.Warn("rejected chat request", "err", err)
		return http.StatusBadRequest, errorResponse{Error: invalidRequest, Details: err.Error(), Code: http.StatusBadRequest}
	}

	reply, err := h.relay.Relay(ctx, usecase.RelayInput{Messages: messages})
	if err != nil {
		status, resp := mapError(err)
		logger.Error("chat relay failed", "status", status, "kind", errorKind(err), "err", err)
		return status, resp
	}

	logger.Info("chat relay completed", "messages", len(messages), "reply_chars", len(reply.Content))
	return http.StatusOK, reply
}

func decodeMessages(body []byte) ([]domain.ChatMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("request body is empty")
	}
	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("request body is not valid JSON: %w", err)
	}
	raw := bytes.TrimSpace(req.Messages)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New("messages is required")
	}
	if raw[0] != '[' {
		return nil, errors.New("messages must be an array")
	}
	var messages []domain.ChatMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("messages must be an array of {role, content} objects: %w", err)
	}
	return messages, nil
}

func mapError(err error) (int, errorResponse) {
	var relayErr *usecase.Error
	if !errors.As(err, &relayErr) {
		return http.StatusInternalServerError, errorResponse{
			Error:   genericFailure,
			Details: err.Error(),
			Code:    http.StatusInternalServerError,
		}
	}

	status := relayErr.HTTPStatus()
	code := relayErr.Status
	if code == 0 {
		code = status
	}
	message := genericFailure
	if relayErr.Kind == usecase.ErrorInvalidInput {
		message = invalidRequest
	}
	return status, errorResponse{Error: message, Details: relayErr.Detail, Code: code}
}

func errorKind(err error) string {
	var relayErr *usecase.Error
	if errors.As(err, &relayErr) {
		return string(relayErr.Kind)
	}
	return "UNKNOWN"
}

func eventBody(event events.APIGatewayProxyRequest) []byte {
	if !event.IsBase64Encoded {
		return []byte(event.Body)
	}
	decoded, err := base64.StdEncoding.DecodeString(event.Body)
	if err != nil {
		return []byte(event.Body)
	}
	return decoded
}

// headerValue looks a header up case-insensitively; API Gateway preserves the
// client's casing.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var newUUID = func() string {
	return uuid.NewString()
}
