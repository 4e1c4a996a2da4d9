package styles

import (
	rfidclone "github.com/allbin/go-rfidclone"
	"github.com/allbin/go-rfidclone/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Accent).
			Background(colors.Surface0).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Width(12)

	ValueStyle = lipgloss.NewStyle().
			Foreground(colors.Text).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colors.Muted)

	ConfirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Base).
			Background(colors.Peach).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Danger)

	OKStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Success)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)
)

// PhaseColor is the accent used for a workflow phase
func PhaseColor(phase rfidclone.Phase) lipgloss.Color {
	switch phase {
	case rfidclone.HardwareVerified:
		return colors.Blue
	case rfidclone.HardwareSuspect:
		return colors.Warning
	case rfidclone.SourceCaptured:
		return colors.Teal
	case rfidclone.Cloned:
		return colors.Success
	case rfidclone.Connected:
		return colors.Subtext1
	default:
		return colors.Danger
	}
}

// PhaseBadge renders phase the way the status bar shows modes
func PhaseBadge(phase rfidclone.Phase) string {
	return lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(PhaseColor(phase)).
		Bold(true).
		Padding(0, 1).
		Render(phase.String())
}
