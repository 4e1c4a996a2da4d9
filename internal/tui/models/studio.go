package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	rfidclone "github.com/allbin/go-rfidclone"
	"github.com/allbin/go-rfidclone/channel"
	"github.com/allbin/go-rfidclone/internal/tui/components"
	"github.com/allbin/go-rfidclone/internal/tui/keys"
	"github.com/allbin/go-rfidclone/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the workflow surface the studio drives
type Controller interface {
	State() rfidclone.State
	Connect(ctx context.Context, path string) (rfidclone.Result, error)
	Disconnect(ctx context.Context) rfidclone.Result
	ReadSource(ctx context.Context) (rfidclone.Result, error)
	WriteTarget(ctx context.Context) (rfidclone.Result, error)
}

var _ Controller = (*rfidclone.Controller)(nil)

// PortLister provides the candidate ports with their USB identity
type PortLister interface {
	Describe() ([]channel.PortInfo, error)
}

// PortsMsg carries a refreshed port list
type PortsMsg struct {
	Ports []channel.PortInfo
	Err   error
}

// ResultMsg carries the outcome of an action run in the background
type ResultMsg struct {
	Result rfidclone.Result
}

// Studio is the interactive clone workflow. Actions run as commands and at
// most one is in flight; keys for other actions are ignored until it ends.
type Studio struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctrl  Controller
	ports PortLister

	picker    *components.PortPicker
	log       *components.LogView
	statusBar *components.StatusBar
	spinner   spinner.Model
	help      help.Model
	keys      keys.StudioKeys

	state      rfidclone.State
	busy       rfidclone.Action
	confirming bool
	failed     bool
	ready      bool
	width      int
	height     int
	now        func() time.Time
}

func NewStudio(ctx context.Context, ctrl Controller, ports PortLister, line *components.LineInfo) *Studio {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.PhaseColor(rfidclone.SourceCaptured))

	return &Studio{
		ctx:       ctx,
		cancel:    cancel,
		ctrl:      ctrl,
		ports:     ports,
		picker:    components.NewPortPicker(),
		log:       components.NewLogView(80, 10),
		statusBar: components.NewStatusBar(line),
		spinner:   sp,
		help:      help.New(),
		keys:      keys.NewStudioKeys(),
		state:     ctrl.State(),
		now:       time.Now,
	}
}

// State returns the last state reported by the controller
func (m *Studio) State() rfidclone.State { return m.state }

// Busy returns the action in flight, or 0
func (m *Studio) Busy() rfidclone.Action { return m.busy }

// Confirming reports whether a write is waiting for confirmation
func (m *Studio) Confirming() bool { return m.confirming }

// Log returns the log pane
func (m *Studio) Log() *components.LogView { return m.log }

// Picker returns the port table
func (m *Studio) Picker() *components.PortPicker { return m.picker }

func (m *Studio) Init() tea.Cmd {
	return m.refreshPorts()
}

func (m *Studio) refreshPorts() tea.Cmd {
	lister := m.ports
	return func() tea.Msg {
		ports, err := lister.Describe()
		return PortsMsg{Ports: ports, Err: err}
	}
}

func (m *Studio) run(action rfidclone.Action, path string) tea.Cmd {
	m.busy = action
	ctx, ctrl := m.ctx, m.ctrl
	do := func() tea.Msg {
		var res rfidclone.Result
		switch action {
		case rfidclone.ActionConnect:
			res, _ = ctrl.Connect(ctx, path)
		case rfidclone.ActionDisconnect:
			res = ctrl.Disconnect(ctx)
		case rfidclone.ActionReadSource:
			res, _ = ctrl.ReadSource(ctx)
		case rfidclone.ActionWriteTarget:
			res, _ = ctrl.WriteTarget(ctx)
		}
		return ResultMsg{Result: res}
	}
	return tea.Batch(m.spinner.Tick, do)
}

func (m *Studio) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.log.SetSize(msg.Width, m.logHeight())
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PortsMsg:
		if msg.Err != nil {
			m.log.Add(m.now(), components.LogError, fmt.Sprintf("Listing ports failed: %v", msg.Err))
			return m, nil
		}
		m.picker.SetPorts(msg.Ports)
		text := fmt.Sprintf("Found %d port(s)", len(msg.Ports))
		if info, ok := channel.DetectController(msg.Ports); ok {
			text += ", reader board on " + info.Path
		}
		m.log.Add(m.now(), components.LogInfo, text)
		return m, nil

	case ResultMsg:
		res := msg.Result
		m.busy = 0
		m.state = res.State
		m.failed = !res.OK()
		level := components.LogOK
		if !res.OK() {
			level = components.LogError
		}
		m.log.Add(m.now(), level, res.Log)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Studio) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		if m.busy == 0 && m.state.IsConnected() {
			m.ctrl.Disconnect(context.WithoutCancel(m.ctx))
		}
		return tea.Quit
	}

	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirming = false
			return m.run(rfidclone.ActionWriteTarget, "")
		case key.Matches(msg, m.keys.Cancel):
			m.confirming = false
			m.log.Add(m.now(), components.LogInfo, "Write cancelled")
		}
		return nil
	}

	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		m.log.SetSize(m.width, m.logHeight())
		return nil
	}
	if m.busy != 0 {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Connect):
		path := m.picker.Selected()
		if path == "" {
			m.log.Add(m.now(), components.LogError, "No port selected")
			return nil
		}
		return m.run(rfidclone.ActionConnect, path)
	case key.Matches(msg, m.keys.Disconnect):
		return m.run(rfidclone.ActionDisconnect, "")
	case key.Matches(msg, m.keys.Read):
		return m.run(rfidclone.ActionReadSource, "")
	case key.Matches(msg, m.keys.Write):
		if !m.state.CanWrite() {
			// the controller refuses and logs it without touching the reader
			return m.run(rfidclone.ActionWriteTarget, "")
		}
		m.confirming = true
		return nil
	case key.Matches(msg, m.keys.Refresh):
		return m.refreshPorts()
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		return m.picker.Update(msg)
	}
	return nil
}

const (
	pickerHeight = 9
	panelHeight  = 7
)

func (m *Studio) logHeight() int {
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 3
	}
	h := m.height - pickerHeight - panelHeight - helpHeight - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Studio) panel() string {
	row := func(label, value string) string {
		return styles.LabelStyle.Render(label) + styles.ValueStyle.Render(value)
	}

	lines := []string{row("State", styles.PhaseBadge(m.state.Phase))}
	if p := m.state.Channel.Path(); p != "" {
		lines = append(lines, row("Port", p))
	}
	switch m.state.Phase {
	case rfidclone.HardwareSuspect:
		lines = append(lines, row("Reason", m.state.Reason))
	case rfidclone.SourceCaptured:
		lines = append(lines, row("Source UID", m.state.UID), row("Card type", m.state.CardType))
	case rfidclone.Cloned:
		lines = append(lines, row("Cloned UID", m.state.UID))
	}

	switch {
	case m.confirming:
		lines = append(lines, styles.ConfirmStyle.Render(
			fmt.Sprintf("Place the blank tag on the reader. Write %s? [y/n]", m.state.UID)))
	case m.busy != 0:
		lines = append(lines, m.spinner.View()+" "+busyText(m.busy))
	}

	width := m.width - 2
	if width < 40 {
		width = 40
	}
	return styles.PanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func busyText(a rfidclone.Action) string {
	switch a {
	case rfidclone.ActionConnect:
		return "Connecting and checking reader..."
	case rfidclone.ActionReadSource:
		return "Reading source tag..."
	case rfidclone.ActionWriteTarget:
		return "Writing target tag..."
	default:
		return "Working..."
	}
}

func (m *Studio) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := styles.TitleStyle.Render("RFID Clone Studio")
	status := m.statusBar.View(m.state, m.failed, m.now().Format("15:04:05"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.picker.View(),
		m.panel(),
		styles.ContentBorderStyle.Render(m.log.View()),
		m.help.View(m.keys),
		status,
	)
}
