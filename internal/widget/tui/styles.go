package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorBrand  = lipgloss.Color("#7C3AED")
	colorAccent = lipgloss.Color("#6366F1")
	colorSubtle = lipgloss.Color("#666666")
	colorBadge  = lipgloss.Color("#EF4444")
	colorWhite  = lipgloss.Color("#FFFFFF")
	colorBubble = lipgloss.Color("#E5E7EB")
	colorInk    = lipgloss.Color("#1F2937")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorBrand).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent)

	userBubbleStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorAccent).
			Padding(0, 1)

	assistantBubbleStyle = lipgloss.NewStyle().
				Foreground(colorInk).
				Background(colorBubble).
				Padding(0, 1)

	launcherStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorBrand).
			Padding(0, 2)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorBadge).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)
)
