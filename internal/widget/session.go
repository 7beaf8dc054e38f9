// Package widget implements the client side of the support chat: an
// in-memory conversation that resends its full history to the relay on every
// user turn.
package widget

import (
	"context"
	"errors"
	"strings"

	"wtl-assistant/internal/domain"
)

const (
	WelcomeMessage   = "Welcome to WTL Tourism! 🚕\nAsk me anything about cab booking, our services, or your trip. I answer only about worldtriplink.com."
	HighDemandNotice = "I'm currently experiencing high demand. Please try again later or call us directly!"
	GenericApology   = "Sorry, I encountered an error. Please try again later."
	InvalidResponse  = "Invalid response format from API"
)

// Relay posts a conversation and returns the assistant's reply text.
type Relay interface {
	Send(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Pending is a turn that has been committed to history and is waiting for
// the relay.
type Pending struct {
	Messages []domain.ChatMessage
}

// Result is the resolution of a Pending turn.
type Result struct {
	Reply string
	Err   error
}

// Session is the widget state machine. It is not safe for concurrent use;
// like a UI event loop, one goroutine owns it. Only Deliver may run
// elsewhere.
type Session struct {
	relay   Relay
	welcome string
	history []domain.ChatMessage
	input   string
	open    bool
	loading bool

	onScroll func()
	onFocus  func()
}

type Option func(*Session)

// WithScrollHook is called after every history mutation.
func WithScrollHook(fn func()) Option {
	return func(s *Session) { s.onScroll = fn }
}

// WithFocusHook is called whenever the widget opens.
func WithFocusHook(fn func()) Option {
	return func(s *Session) { s.onFocus = fn }
}

// WithWelcome replaces the greeting that seeds the conversation. An empty
// greeting starts with no history.
func WithWelcome(text string) Option {
	return func(s *Session) { s.welcome = text }
}

func NewSession(relay Relay, opts ...Option) (*Session, error) {
	if relay == nil {
		return nil, errors.New("widget: relay must not be nil")
	}
	s := &Session{relay: relay, welcome: WelcomeMessage}
	for _, opt := range opts {
		opt(s)
	}
	s.history = s.seed()
	return s, nil
}

func (s *Session) seed() []domain.ChatMessage {
	if s.welcome == "" {
		return nil
	}
	return []domain.ChatMessage{{Role: domain.RoleAssistant, Content: s.welcome}}
}

// History returns a copy of the conversation.
func (s *Session) History() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) Input() string     { return s.input }
func (s *Session) SetInput(v string) { s.input = v }
func (s *Session) IsOpen() bool      { return s.open }
func (s *Session) IsLoading() bool   { return s.loading }

// CanSend mirrors the enabled state of the send button.
func (s *Session) CanSend() bool {
	return !s.loading && strings.TrimSpace(s.input) != ""
}

// Unread is the badge count shown on the closed launcher: every message
// beyond the greeting.
func (s *Session) Unread() int {
	if s.open || len(s.history) <= 1 {
		return 0
	}
	return len(s.history) - 1
}

func (s *Session) Toggle() {
	if s.open {
		s.Close()
		return
	}
	s.Open()
}

func (s *Session) Open() {
	s.open = true
	if s.onFocus != nil {
		s.onFocus()
	}
}

func (s *Session) Close() {
	s.open = false
}

// KeyPress reports whether key submits the message: Enter with no modifier.
func (s *Session) KeyPress(key string, modified bool) bool {
	return key == "enter" && !modified
}

// Reset drops the conversation back to the greeting. It is refused while a
// reply is outstanding.
func (s *Session) Reset() bool {
	if s.loading {
		return false
	}
	s.history = s.seed()
	s.input = ""
	s.scrolled()
	return true
}

// Begin commits the current input as a user turn. It reports false, and
// changes nothing, when the input is blank or a reply is outstanding.
func (s *Session) Begin() (Pending, bool) {
	text := strings.TrimSpace(s.input)
	if text == "" || s.loading {
		return Pending{}, false
	}
	s.history = append(s.history, domain.ChatMessage{Role: domain.RoleUser, Content: text})
	s.input = ""
	s.loading = true
	s.scrolled()
	return Pending{Messages: wireMessages(s.history)}, true
}

// Deliver performs the relay call for p. It does not touch session state and
// may run off the owning goroutine.
func (s *Session) Deliver(ctx context.Context, p Pending) Result {
	reply, err := s.relay.Send(ctx, p.Messages)
	return Result{Reply: reply, Err: err}
}

// Finish appends the assistant's side of the turn and returns to idle.
func (s *Session) Finish(r Result) domain.ChatMessage {
	content := r.Reply
	if r.Err != nil {
		content = Notice(r.Err)
	}
	msg := domain.ChatMessage{Role: domain.RoleAssistant, Content: content}
	s.history = append(s.history, msg)
	s.loading = false
	s.scrolled()
	return msg
}

// Send runs a whole turn synchronously. It reports false when nothing was
// sent.
func (s *Session) Send(ctx context.Context) (domain.ChatMessage, bool) {
	p, ok := s.Begin()
	if !ok {
		return domain.ChatMessage{}, false
	}
	return s.Finish(s.Deliver(ctx, p)), true
}

func (s *Session) scrolled() {
	if s.onScroll != nil {
		s.onScroll()
	}
}

// wireMessages strips everything but role and content.
func wireMessages(history []domain.ChatMessage) []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(history))
	for i, m := range history {
		out[i] = domain.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// Notice is the text shown in place of a reply when err ends a turn.
func Notice(err error) string {
	var relayErr *RelayError
	if errors.As(err, &relayErr) && relayErr.Notice != "" {
		return relayErr.Notice
	}
	return GenericApology
}
