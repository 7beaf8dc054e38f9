package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"wtl-assistant/internal/domain"
)

const (
	DefaultModel       = "openai/gpt-3.5-turbo"
	MaxTokens          = 700
	Temperature        = float32(0.2)
	upstreamFailureMsg = "completion_failed"
)

type LLMClient interface {
	Chat(ctx context.Context, req domain.CompletionRequest) (domain.ChatMessage, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type upstreamMessager interface {
	UpstreamMessage() string
}

// RelayService forwards a caller conversation to the completion service under
// the fixed domain policy. It holds no per-call state and is safe for
// concurrent use.
type RelayService struct {
	llm            LLMClient
	policy         string
	model          string
	maxContextMsgs int
}

type RelayInput struct {
	Messages []domain.ChatMessage
}

func NewRelayService(llm LLMClient, policy, model string, maxContextMsgs int) (*RelayService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if strings.TrimSpace(policy) == "" {
		return nil, errors.New("usecase: policy must not be empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	if maxContextMsgs < 0 {
		maxContextMsgs = 0
	}
	return &RelayService{
		llm:            llm,
		policy:         policy,
		model:          model,
		maxContextMsgs: maxContextMsgs,
	}, nil
}

// Relay performs exactly one completion call and returns the top choice's
// message verbatim. Failures are always returned as *Error.
func (s *RelayService) Relay(ctx context.Context, in RelayInput) (domain.ChatMessage, error) {
	// An empty or system-only conversation is still forwarded; the policy
	// alone is a valid outbound request.
	for i, m := range in.Messages {
		if !domain.ValidRole(m.Role) {
			return domain.ChatMessage{}, newError(ErrorInvalidInput, fmt.Sprintf("messages[%d]: unsupported role %q", i, m.Role), nil)
		}
	}

	reply, err := s.llm.Chat(ctx, domain.CompletionRequest{
		Model:       s.model,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		Messages:    buildOutboundMessages(s.policy, in.Messages, s.maxContextMsgs),
	})
	if err != nil {
		return domain.ChatMessage{}, classifyUpstream(err)
	}
	return reply, nil
}

func classifyUpstream(err error) *Error {
	if status, ok := upstreamStatusCode(err); ok {
		e := newError(kindForStatus(status), upstreamFailureMsg, err)
		e.Status = status
		var msg upstreamMessager
		if errors.As(err, &msg) && msg.UpstreamMessage() != "" {
			e.Detail = msg.UpstreamMessage()
		}
		return e
	}
	switch {
	case errors.Is(err, domain.ErrMalformedResponse):
		return newError(ErrorMalformed, upstreamFailureMsg, err)
	case errors.Is(err, domain.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return newError(ErrorNetwork, upstreamFailureMsg, err)
	}
	return newError(ErrorUpstream, upstreamFailureMsg, err)
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrorAuth
	case status == http.StatusPaymentRequired,
		status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= 500:
		return ErrorTransient
	}
	return ErrorUpstream
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	status := statusErr.HTTPStatusCode()
	return status, status > 0
}
