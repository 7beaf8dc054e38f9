package domain

import "errors"

// CompletionRequest is the provider-agnostic shape of a single chat
// completion call.
type CompletionRequest struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Messages    []ChatMessage
}

var (
	// ErrMalformedResponse marks an upstream reply that could not be decoded or
	// carried no usable choice.
	ErrMalformedResponse = errors.New("malformed completion response")
	// ErrTransport marks a failure to reach the completion service at all.
	ErrTransport = errors.New("completion service unreachable")
)
