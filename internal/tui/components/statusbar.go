package components

import (
	"fmt"

	rfidclone "github.com/allbin/go-rfidclone"
	"github.com/allbin/go-rfidclone/channel"
	"github.com/allbin/go-rfidclone/internal/tui/colors"
	"github.com/allbin/go-rfidclone/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// LineInfo is the serial line setup shown on the right of the status bar
type LineInfo struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   channel.Parity
}

type StatusBar struct {
	line  *LineInfo
	width int
}

func NewStatusBar(line *LineInfo) *StatusBar {
	return &StatusBar{line: line}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func parityLetter(p channel.Parity) string {
	switch p {
	case channel.ParityEven:
		return "E"
	case channel.ParityOdd:
		return "O"
	default:
		return "N"
	}
}

// View renders the bar: phase badge, port and indicator on the left, line
// settings and clock on the right.
func (sb *StatusBar) View(state rfidclone.State, failed bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	phase := styles.PhaseBadge(state.Phase)

	portText := state.Channel.Path()
	if portText == "" {
		portText = "no port"
	}
	port := lipgloss.NewStyle().
		Foreground(colors.Accent).
		Bold(true).
		Padding(0, 1).
		Render(portText)

	var indicator string
	switch {
	case failed:
		indicator = lipgloss.NewStyle().Foreground(colors.Danger).Render("✗")
	case state.IsConnected():
		indicator = lipgloss.NewStyle().Foreground(colors.Success).Render("●")
	default:
		indicator = lipgloss.NewStyle().Foreground(colors.Danger).Render("○")
	}

	lineText := "⚡ serial"
	if sb.line != nil {
		lineText = fmt.Sprintf("⚡ %d baud %d%s%d",
			sb.line.BaudRate,
			sb.line.DataBits,
			parityLetter(sb.line.Parity),
			sb.line.StopBits)
	}
	lineInfo := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(lineText)

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, phase, port, indicator, divider)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, lineInfo, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
