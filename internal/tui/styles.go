package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/robby/adminctl/internal/domain"
)

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// SelectedItemStyle is used for the cursor row and focused fields.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for non-selected items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// SuccessStyle is used for success notifications.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// WarningStyle is used for warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")). // Yellow
			Bold(true)

	// PromptStyle is used for prompt text and field labels.
	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")) // Light blue

	// HelpStyle is used for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Dark gray
			MarginTop(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	checkedRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	legendStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginTop(1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	dangerDialogStyle = dialogStyle.
				BorderForeground(lipgloss.Color("196"))

	toolbarActionStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("205")).
				Foreground(lipgloss.Color("0")).
				Padding(0, 1)

	chartBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))
)

// noticeStyle returns the style for a notification severity.
func noticeStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeveritySuccess:
		return SuccessStyle
	case domain.SeverityWarning:
		return WarningStyle
	case domain.SeverityError:
		return ErrorStyle
	default:
		return PromptStyle
	}
}

// renderNotice renders n, or "" when there is nothing to show.
func renderNotice(n domain.Notification) string {
	if n.Empty() {
		return ""
	}
	return noticeStyle(n.Severity).Render(n.Message)
}
