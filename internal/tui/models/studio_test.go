package models

import (
	"context"
	"strings"
	"testing"

	rfidclone "github.com/allbin/go-rfidclone"
	"github.com/allbin/go-rfidclone/channel"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeController struct {
	state  rfidclone.State
	calls  []string
	result rfidclone.Result
}

func (f *fakeController) State() rfidclone.State { return f.state }

func (f *fakeController) Connect(ctx context.Context, path string) (rfidclone.Result, error) {
	f.calls = append(f.calls, "connect "+path)
	return f.result, f.result.Err
}

func (f *fakeController) Disconnect(ctx context.Context) rfidclone.Result {
	f.calls = append(f.calls, "disconnect")
	return rfidclone.Result{Action: rfidclone.ActionDisconnect, Log: "Disconnected"}
}

func (f *fakeController) ReadSource(ctx context.Context) (rfidclone.Result, error) {
	f.calls = append(f.calls, "read")
	return f.result, f.result.Err
}

func (f *fakeController) WriteTarget(ctx context.Context) (rfidclone.Result, error) {
	f.calls = append(f.calls, "write")
	return f.result, f.result.Err
}

type fakePorts []channel.PortInfo

func (p fakePorts) Describe() ([]channel.PortInfo, error) { return p, nil }

func press(m *Studio, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// drain runs cmd and feeds every non-spinner message back into m
func drain(t *testing.T, m *Studio, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, m, c)
		}
	case spinner.TickMsg:
	default:
		m.Update(msg)
	}
}

func lastLog(m *Studio) string {
	lines := m.Log().Lines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func capturedState() rfidclone.State {
	return rfidclone.State{Phase: rfidclone.SourceCaptured, UID: "04A1B2C3", CardType: "MIFARE_1K"}
}

func TestWriteNeedsConfirmation(t *testing.T) {
	ctrl := &fakeController{
		state: capturedState(),
		result: rfidclone.Result{
			Action: rfidclone.ActionWriteTarget,
			State:  rfidclone.State{Phase: rfidclone.Cloned, UID: "04A1B2C3"},
			Log:    "Wrote UID 04A1B2C3 to target tag",
		},
	}
	m := NewStudio(context.Background(), ctrl, fakePorts{}, nil)

	if cmd := press(m, "w"); cmd != nil {
		t.Errorf("w returned a command before confirmation")
	}
	if !m.Confirming() {
		t.Fatalf("expected confirmation prompt")
	}
	if len(ctrl.calls) != 0 {
		t.Errorf("calls = %v, expected none before confirming", ctrl.calls)
	}

	cmd := press(m, "y")
	if m.Busy() != rfidclone.ActionWriteTarget {
		t.Errorf("Busy() = %v, expected write", m.Busy())
	}
	drain(t, m, cmd)

	if len(ctrl.calls) != 1 || ctrl.calls[0] != "write" {
		t.Errorf("calls = %v, expected [write]", ctrl.calls)
	}
	if m.State().Phase != rfidclone.Cloned {
		t.Errorf("state = %v, expected Cloned", m.State())
	}
	if m.Busy() != 0 {
		t.Errorf("still busy after result")
	}
	if !strings.Contains(lastLog(m), "Wrote UID 04A1B2C3") {
		t.Errorf("last log = %q", lastLog(m))
	}
}

func TestWriteCancelled(t *testing.T) {
	for _, k := range []string{"n", "esc"} {
		t.Run(k, func(t *testing.T) {
			ctrl := &fakeController{state: capturedState()}
			m := NewStudio(context.Background(), ctrl, fakePorts{}, nil)
			press(m, "w")
			if cmd := press(m, k); cmd != nil {
				t.Errorf("cancel returned a command")
			}
			if m.Confirming() || len(ctrl.calls) != 0 {
				t.Errorf("confirming = %v, calls = %v", m.Confirming(), ctrl.calls)
			}
			if !strings.Contains(lastLog(m), "Write cancelled") {
				t.Errorf("last log = %q", lastLog(m))
			}
		})
	}
}

func TestWriteOutsideCaptureGoesToController(t *testing.T) {
	ctrl := &fakeController{result: rfidclone.Result{Log: "Not allowed: write needs a captured source UID", Err: rfidclone.ErrPrecondition}}
	m := NewStudio(context.Background(), ctrl, fakePorts{}, nil)

	drain(t, m, press(m, "w"))
	if m.Confirming() {
		t.Errorf("no confirmation expected without a captured source")
	}
	if len(ctrl.calls) != 1 || ctrl.calls[0] != "write" {
		t.Errorf("calls = %v, expected [write]", ctrl.calls)
	}
	if !strings.Contains(lastLog(m), "Not allowed") {
		t.Errorf("last log = %q", lastLog(m))
	}
}

func TestOneActionAtATime(t *testing.T) {
	ctrl := &fakeController{state: rfidclone.State{Phase: rfidclone.HardwareVerified}}
	m := NewStudio(context.Background(), ctrl, fakePorts{}, nil)

	first := press(m, "r")
	if first == nil {
		t.Fatalf("r returned no command")
	}
	if cmd := press(m, "r"); cmd != nil {
		t.Errorf("second r while busy returned a command")
	}
	if cmd := press(m, "d"); cmd != nil {
		t.Errorf("d while busy returned a command")
	}
	drain(t, m, first)
	if len(ctrl.calls) != 1 {
		t.Errorf("calls = %v, expected one read", ctrl.calls)
	}
}

func TestConnectUsesDetectedReader(t *testing.T) {
	ports := fakePorts{
		{Path: "/dev/ttyS0", Description: "Standard Serial"},
		{Path: "/dev/ttyACM0", Description: "Arduino Uno", IsUSB: true, VendorID: "2341", ProductID: "0043", Controller: true},
	}
	ctrl := &fakeController{result: rfidclone.Result{State: rfidclone.State{Phase: rfidclone.HardwareVerified}, Log: "Connected"}}
	m := NewStudio(context.Background(), ctrl, ports, nil)

	drain(t, m, m.Init())
	if got := m.Picker().Selected(); got != "/dev/ttyACM0" {
		t.Fatalf("Selected() = %q, expected the reader board", got)
	}
	if !strings.Contains(lastLog(m), "reader board on /dev/ttyACM0") {
		t.Errorf("last log = %q", lastLog(m))
	}

	drain(t, m, press(m, "c"))
	if len(ctrl.calls) != 1 || ctrl.calls[0] != "connect /dev/ttyACM0" {
		t.Errorf("calls = %v", ctrl.calls)
	}
	if m.State().Phase != rfidclone.HardwareVerified {
		t.Errorf("state = %v", m.State())
	}
}

func TestConnectWithoutPorts(t *testing.T) {
	ctrl := &fakeController{}
	m := NewStudio(context.Background(), ctrl, fakePorts{}, nil)
	drain(t, m, m.Init())

	if cmd := press(m, "c"); cmd != nil {
		t.Errorf("connect without ports returned a command")
	}
	if len(ctrl.calls) != 0 {
		t.Errorf("calls = %v", ctrl.calls)
	}
	if !strings.Contains(lastLog(m), "No port selected") {
		t.Errorf("last log = %q", lastLog(m))
	}
}

func TestQuitDisconnects(t *testing.T) {
	ctrl := &fakeController{state: rfidclone.State{Phase: rfidclone.HardwareVerified}}
	m := NewStudio(context.Background(), ctrl, fakePorts{}, nil)

	cmd := press(m, "q")
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("q did not quit")
	}
	if len(ctrl.calls) != 1 || ctrl.calls[0] != "disconnect" {
		t.Errorf("calls = %v, expected [disconnect]", ctrl.calls)
	}
}

func TestView(t *testing.T) {
	m := NewStudio(context.Background(), &fakeController{state: capturedState()}, fakePorts{}, nil)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() before size = %q", got)
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	for _, want := range []string{"RFID Clone Studio", "04A1B2C3", "MIFARE_1K"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
