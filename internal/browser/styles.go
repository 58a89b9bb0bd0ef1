package browser

import "github.com/charmbracelet/lipgloss"

var (
	Primary      = lipgloss.Color("#AA5CC3") // Purple
	Secondary    = lipgloss.Color("#00A4DC") // Cyan
	FgPrimary    = lipgloss.Color("#FFFFFF")
	FgMuted      = lipgloss.Color("#888888")
	ErrorColor   = lipgloss.Color("#FF5555")
	SuccessColor = lipgloss.Color("#00A4DC")
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(FgMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	coverStyle  = lipgloss.NewStyle().Foreground(SuccessColor)

	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(FgMuted).
			Foreground(FgMuted).
			Align(lipgloss.Center).
			Padding(1, 1)

	selectedTileStyle = tileStyle.
				BorderForeground(Primary).
				Foreground(FgPrimary).
				Bold(true)

	captionStyle = lipgloss.NewStyle().Foreground(Secondary).Bold(true)

	pickCursorStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
)
