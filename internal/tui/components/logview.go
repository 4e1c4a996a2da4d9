package components

import (
	"strings"
	"time"

	"github.com/allbin/go-rfidclone/internal/tui/styles"
	"github.com/charmbracelet/bubbles/viewport"
)

// LogLevel picks the marker shown in front of a log line
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogOK
	LogError
)

// LogView is a scrolling list of timestamped lines that follows the bottom
type LogView struct {
	viewport viewport.Model
	lines    []string
}

func NewLogView(width, height int) *LogView {
	return &LogView{viewport: viewport.New(width, height)}
}

func (l *LogView) SetSize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
}

func (l *LogView) Add(at time.Time, level LogLevel, text string) {
	var marker string
	switch level {
	case LogOK:
		marker = styles.OKStyle.Render("✓")
	case LogError:
		marker = styles.ErrorStyle.Render("✗")
	default:
		marker = styles.MutedStyle.Render("·")
	}
	line := styles.MutedStyle.Render(at.Format("15:04:05")) + " " + marker + " " + text
	l.lines = append(l.lines, line)
	l.viewport.SetContent(strings.Join(l.lines, "\n"))
	l.viewport.GotoBottom()
}

// Lines returns the rendered lines, oldest first
func (l *LogView) Lines() []string {
	return l.lines
}

func (l *LogView) View() string {
	return l.viewport.View()
}
