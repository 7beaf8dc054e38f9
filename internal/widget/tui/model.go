// Package tui renders the support chat widget in a terminal using Bubble Tea.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wtl-assistant/internal/widget"
)

const (
	defaultWidth  = 60
	defaultHeight = 20
	// header, status, input, help and the panel border.
	chromeLines = 6
)

// replyMsg carries a finished relay call back into the update loop.
type replyMsg struct {
	result widget.Result
}

// Model is the root Bubble Tea model for the chat widget.
type Model struct {
	ctx      context.Context
	session  *widget.Session
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	// blink is the cursor command from the last focus, handed to the
	// runtime on the next Init or Update.
	blink tea.Cmd
}

// New creates a closed widget that talks to relay. ctx bounds every relay
// call the widget makes.
func New(ctx context.Context, relay widget.Relay) (*Model, error) {
	in := textinput.New()
	in.Placeholder = "Ask about cab booking, pricing, routes..."
	in.Prompt = "› "
	in.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := &Model{
		ctx:      ctx,
		input:    in,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeLines),
		spinner:  sp,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	session, err := widget.NewSession(relay,
		widget.WithScrollHook(m.syncViewport),
		widget.WithFocusHook(m.focusInput),
	)
	if err != nil {
		return nil, err
	}
	m.session = session
	m.resize(defaultWidth, defaultHeight)
	return m, nil
}

// Session exposes the underlying conversation state.
func (m *Model) Session() *widget.Session {
	return m.session
}

// Open shows the chat panel.
func (m *Model) Open() {
	m.session.Open()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.takeBlink()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case replyMsg:
		m.session.Finish(msg.result)
		if m.session.IsOpen() {
			m.focusInput()
		}
		return m, m.takeBlink()

	case spinner.TickMsg:
		if !m.session.IsLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink messages belong to the input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Toggle):
		m.session.Toggle()
		if !m.session.IsOpen() {
			m.input.Blur()
			m.blink = nil
		}
		return m, m.takeBlink()
	}

	if !m.session.IsOpen() {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Reset):
		if m.session.Reset() {
			m.input.SetValue("")
		}
		return m, nil

	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case msg.Type == tea.KeyEnter:
		if !m.session.KeyPress("enter", msg.Alt) {
			return m, nil
		}
		return m, m.submit()
	}

	// The input is disabled while a reply is outstanding.
	if m.session.IsLoading() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetInput(m.input.Value())
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	m.session.SetInput(m.input.Value())
	p, ok := m.session.Begin()
	if !ok {
		return nil
	}
	m.input.SetValue("")
	m.input.Blur()

	ctx, session := m.ctx, m.session
	deliver := func() tea.Msg {
		return replyMsg{result: session.Deliver(ctx, p)}
	}
	return tea.Batch(deliver, m.spinner.Tick)
}

func (m *Model) focusInput() {
	m.blink = m.input.Focus()
}

func (m *Model) takeBlink() tea.Cmd {
	cmd := m.blink
	m.blink = nil
	return cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width = max(width-2, 10)
	m.viewport.Height = max(height-chromeLines, 3)
	m.input.Width = max(width-6, 10)
	m.syncViewport()
}

// syncViewport re-renders the history and scrolls to the newest message.
func (m *Model) syncViewport() {
	if m.session == nil {
		return
	}
	m.viewport.SetContent(renderHistory(m.session.History(), m.viewport.Width))
	m.viewport.GotoBottom()
}
