package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"wtl-assistant/internal/domain"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.session.IsOpen() {
		return renderLauncher(m.session.Unread())
	}

	status := ""
	if m.session.IsLoading() {
		status = m.spinner.View() + " Typing..."
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Width(m.viewport.Width).Render("WTL Assistant · cab booking help"),
		m.viewport.View(),
		status,
		m.input.View(),
	)
	bindings := []key.Binding{keys.Toggle, keys.Reset, keys.Quit}
	if m.session.CanSend() {
		bindings = append([]key.Binding{keys.Send}, bindings...)
	}
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	help := helpStyle.Render(strings.Join(hints, " • "))
	return lipgloss.JoinVertical(lipgloss.Left, panelStyle.Render(body), help)
}

func renderLauncher(unread int) string {
	launcher := launcherStyle.Render("WTL Assistant")
	if unread > 0 {
		launcher = lipgloss.JoinHorizontal(lipgloss.Top, launcher, " ", badgeStyle.Render(fmt.Sprint(unread)))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		launcher,
		helpStyle.Render(keys.Toggle.Help().Key+" to chat • "+keys.Quit.Help().Key+" to quit"),
	)
}

// renderHistory lays messages out like the web widget: the user's on the
// right, the assistant's on the left.
func renderHistory(history []domain.ChatMessage, width int) string {
	bubbleWidth := width * 3 / 4
	rows := make([]string, 0, len(history))
	for _, msg := range history {
		style := assistantBubbleStyle
		align := lipgloss.Left
		if msg.Role == domain.RoleUser {
			style = userBubbleStyle
			align = lipgloss.Right
		}
		if lipgloss.Width(msg.Content) > bubbleWidth {
			style = style.Width(bubbleWidth)
		}
		rows = append(rows, lipgloss.PlaceHorizontal(width, align, style.Render(msg.Content)))
	}
	return strings.Join(rows, "\n\n")
}
