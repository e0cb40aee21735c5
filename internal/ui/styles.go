package ui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#06B6D4") // Cyan
	Success   = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	// Diff lines
	AddedStyle = lipgloss.NewStyle().
			Foreground(Success)

	RemovedStyle = lipgloss.NewStyle().
			Foreground(Error)

	HunkStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	FileHeaderStyle = lipgloss.NewStyle().
			Bold(true)

	// Report
	MimeStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	DescriptorStyle = lipgloss.NewStyle().
			Bold(true)

	ReasonStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Italic(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Help bar
	HelpBarStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	// Notifications
	SuccessNotifyStyle = lipgloss.NewStyle().
				Foreground(Success).
				Bold(true)

	ErrorNotifyStyle = lipgloss.NewStyle().
				Foreground(Error).
				Bold(true)

	WarningNotifyStyle = lipgloss.NewStyle().
				Foreground(Warning).
				Bold(true)

	InfoNotifyStyle = lipgloss.NewStyle().
			Foreground(Secondary)
)

// Notification icons
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "•"
)

// RenderNotification renders a one-line message with an icon. Without
// color the icon and message are joined as plain text.
func RenderNotification(msgType string, message string, color bool) string {
	var icon string
	var style lipgloss.Style

	switch msgType {
	case "success":
		icon = IconSuccess
		style = SuccessNotifyStyle
	case "error":
		icon = IconError
		style = ErrorNotifyStyle
	case "warning":
		icon = IconWarning
		style = WarningNotifyStyle
	case "info":
		icon = IconInfo
		style = InfoNotifyStyle
	default:
		icon = IconInfo
		style = MutedStyle
	}

	if !color {
		return icon + " " + message
	}
	return style.Render(icon + " " + message)
}

// paint renders s with style only when color is enabled
func paint(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}
