package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"wtl-assistant/internal/domain"
	"wtl-assistant/internal/widget"
)

type fakeRelay struct {
	reply string
	err   error
	calls [][]domain.ChatMessage
}

func (f *fakeRelay) Send(_ context.Context, messages []domain.ChatMessage) (string, error) {
	f.calls = append(f.calls, messages)
	return f.reply, f.err
}

func newTestModel(t *testing.T, relay widget.Relay) *Model {
	t.Helper()
	m, err := New(context.Background(), relay)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func typeText(m *Model, s string) {
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// resolve runs cmd and feeds any relay reply back into the model.
func resolve(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	var cmds []tea.Cmd
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		cmds = msg
	case replyMsg:
		m.Update(msg)
		return
	}
	delivered := false
	for _, c := range cmds {
		if c == nil {
			continue
		}
		if reply, ok := c().(replyMsg); ok {
			m.Update(reply)
			delivered = true
		}
	}
	require.True(t, delivered, "no relay reply in command batch")
}

func TestNew_RejectsNilRelay(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.Error(t, err)
}

func TestModel_StartsClosedWithLauncher(t *testing.T) {
	m := newTestModel(t, &fakeRelay{})
	require.False(t, m.Session().IsOpen())
	require.Contains(t, m.View(), "WTL Assistant")
	require.Contains(t, m.View(), "ctrl+o")
}

func TestModel_KeysIgnoredWhileClosed(t *testing.T) {
	relay := &fakeRelay{reply: "ok"}
	m := newTestModel(t, relay)
	typeText(m, "hello")
	require.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Empty(t, relay.calls)
	require.Empty(t, m.Session().Input())
}

func TestModel_SendTurn(t *testing.T) {
	relay := &fakeRelay{reply: "Rs 4,500 one way."}
	m := newTestModel(t, relay)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.Session().IsOpen())
	require.True(t, m.input.Focused())

	typeText(m, "Pune to Shirdi price?")
	require.Equal(t, "Pune to Shirdi price?", m.Session().Input())

	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Session().IsLoading())
	require.Empty(t, m.input.Value())
	require.Contains(t, m.View(), "Typing...")

	typeText(m, "ignored while loading")
	require.Empty(t, m.input.Value())

	resolve(t, m, cmd)
	require.False(t, m.Session().IsLoading())
	require.True(t, m.input.Focused())

	history := m.Session().History()
	require.Len(t, history, 3)
	require.Equal(t, domain.ChatMessage{Role: "user", Content: "Pune to Shirdi price?"}, history[1])
	require.Equal(t, domain.ChatMessage{Role: "assistant", Content: "Rs 4,500 one way."}, history[2])
	require.Len(t, relay.calls, 1)
	require.Len(t, relay.calls[0], 2)
	require.Contains(t, m.View(), "Rs 4,500 one way.")
}

func TestModel_AltEnterDoesNotSend(t *testing.T) {
	relay := &fakeRelay{reply: "ok"}
	m := newTestModel(t, relay)
	m.Open()
	typeText(m, "hi")

	require.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true}))
	require.Empty(t, relay.calls)
	require.Equal(t, "hi", m.Session().Input())
}

func TestModel_BlankEnterDoesNothing(t *testing.T) {
	relay := &fakeRelay{reply: "ok"}
	m := newTestModel(t, relay)
	m.Open()
	typeText(m, "   ")

	require.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Empty(t, relay.calls)
	require.Len(t, m.Session().History(), 1)
}

func TestModel_FailureShowsNotice(t *testing.T) {
	m := newTestModel(t, &fakeRelay{err: errors.New("connection refused")})
	m.Open()
	typeText(m, "hello")
	resolve(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	history := m.Session().History()
	require.Equal(t, widget.GenericApology, history[len(history)-1].Content)
	require.False(t, m.Session().IsLoading())
}

func TestModel_CloseShowsUnreadBadgeAndKeepsHistory(t *testing.T) {
	m := newTestModel(t, &fakeRelay{reply: "ok"})
	m.Open()
	typeText(m, "hello")
	resolve(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.False(t, m.Session().IsOpen())
	require.False(t, m.input.Focused())
	require.Equal(t, 2, m.Session().Unread())
	require.Contains(t, m.View(), "2")

	press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Len(t, m.Session().History(), 3)
}

func TestModel_ResetRestoresWelcome(t *testing.T) {
	m := newTestModel(t, &fakeRelay{reply: "ok"})
	m.Open()
	typeText(m, "hello")
	resolve(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Equal(t, []domain.ChatMessage{{Role: "assistant", Content: widget.WelcomeMessage}}, m.Session().History())
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, &fakeRelay{})
	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRenderHistory_AlignsByRole(t *testing.T) {
	const width = 40
	out := renderHistory([]domain.ChatMessage{
		{Role: "assistant", Content: "left"},
		{Role: "user", Content: "right"},
	}, width)

	rows := strings.Split(ansi.Strip(out), "\n\n")
	require.Len(t, rows, 2)

	// Bubbles carry one cell of padding on each side.
	assistantRow, userRow := rows[0], rows[1]
	require.True(t, strings.HasPrefix(assistantRow, " left "), "assistant row %q", assistantRow)
	require.Equal(t, width, len(assistantRow))

	require.Equal(t, width, len(userRow))
	require.True(t, strings.HasSuffix(userRow, " right "), "user row %q", userRow)
	content := strings.TrimLeft(userRow, " ")
	require.Equal(t, "right ", content)
	require.Greater(t, len(userRow)-len(content), width/2)
}

func TestModel_OpeningStartsCursorBlink(t *testing.T) {
	m := newTestModel(t, &fakeRelay{})
	require.Nil(t, m.Init())

	require.NotNil(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlO}))
	require.True(t, m.input.Focused())

	require.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlO}))
	require.False(t, m.input.Focused())
}

func TestModel_InitBlinksWhenStartedOpen(t *testing.T) {
	m := newTestModel(t, &fakeRelay{})
	m.Open()
	require.NotNil(t, m.Init())
	require.Nil(t, m.Init())
}

func TestModel_ReplyRefocusesWithBlink(t *testing.T) {
	m := newTestModel(t, &fakeRelay{reply: "ok"})
	m.Open()
	m.Init()
	typeText(m, "hello")
	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.input.Focused())

	var reply replyMsg
	for _, c := range cmd().(tea.BatchMsg) {
		if c == nil {
			continue
		}
		if r, ok := c().(replyMsg); ok {
			reply = r
		}
	}
	_, next := m.Update(reply)
	require.NotNil(t, next)
	require.True(t, m.input.Focused())
}
