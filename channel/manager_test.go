package channel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/allbin/go-rfidclone/channel"
	"github.com/allbin/go-rfidclone/channel/channeltest"
)

func TestManagerOpenAndClose(t *testing.T) {
	port := channeltest.NewPort()
	opener := channeltest.NewOpener().Attach("/dev/ttyACM0", port)
	m := channeltest.NewManager(opener, "/dev/ttyACM0")

	h, err := m.Open(context.Background(), "/dev/ttyACM0", 57600)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if h.IsZero() {
		t.Fatal("Open returned zero handle")
	}
	if h.Path() != "/dev/ttyACM0" {
		t.Errorf("Handle path = %s, expected /dev/ttyACM0", h.Path())
	}
	if !m.IsOpen(h) {
		t.Error("IsOpen should be true after Open")
	}
	if configs := opener.Configs(); len(configs) != 1 || configs[0].BaudRate != 57600 {
		t.Errorf("Expected one open at 57600 baud, got %+v", configs)
	}
	if got, ok := m.Port(h); !ok || got != port {
		t.Errorf("Port(h) = %v, %v; expected the attached port", got, ok)
	}

	m.Close(h)
	if m.IsOpen(h) {
		t.Error("IsOpen should be false after Close")
	}
	if !port.Closed() {
		t.Error("Underlying port should be closed")
	}

	// Idempotent: a second close and a zero-handle close are no-ops
	m.Close(h)
	m.Close(channel.Handle{})
	if m.IsOpen(h) {
		t.Error("IsOpen should stay false after repeated Close")
	}
	if _, ok := m.Port(h); ok {
		t.Error("Port(h) should fail for a closed handle")
	}
}

func TestManagerOpenFailure(t *testing.T) {
	m := channeltest.NewManager(channeltest.NewOpener(), "COM3")

	h, err := m.Open(context.Background(), "COM3", 115200)
	if !errors.Is(err, channel.ErrConnection) {
		t.Errorf("Expected ErrConnection, got %v", err)
	}
	if !errors.Is(err, channel.ErrDeviceNotFound) {
		t.Errorf("Expected cause ErrDeviceNotFound to be wrapped, got %v", err)
	}
	if !h.IsZero() {
		t.Errorf("Expected zero handle on failure, got %v", h)
	}
	if !m.Current().IsZero() {
		t.Error("Failed open must not leave a current handle")
	}
}

func TestManagerSingleHandle(t *testing.T) {
	opener := channeltest.NewOpener().
		Attach("/dev/ttyUSB0", channeltest.NewPort()).
		Attach("/dev/ttyUSB1", channeltest.NewPort())
	m := channeltest.NewManager(opener)

	first, err := m.Open(context.Background(), "/dev/ttyUSB0", 115200)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := m.Open(context.Background(), "/dev/ttyUSB1", 115200); !errors.Is(err, channel.ErrAlreadyOpen) {
		t.Errorf("Expected ErrAlreadyOpen, got %v", err)
	}

	m.Close(first)
	second, err := m.Open(context.Background(), "/dev/ttyUSB1", 115200)
	if err != nil {
		t.Fatalf("Open after close failed: %v", err)
	}
	if second == first {
		t.Error("Expected a fresh handle")
	}
	if m.IsOpen(first) {
		t.Error("Stale handle must not report open")
	}
}

func TestManagerSettleDelay(t *testing.T) {
	opener := channeltest.NewOpener().Attach("/dev/ttyACM0", channeltest.NewPort())
	m := channel.NewManager(
		channel.WithOpener(opener.Open),
		channel.WithSettleDelay(50*time.Millisecond),
	)

	start := time.Now()
	if _, err := m.Open(context.Background(), "/dev/ttyACM0", 115200); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Open returned after %v, expected at least the settle delay", elapsed)
	}
}

func TestManagerSettleCanceled(t *testing.T) {
	port := channeltest.NewPort()
	opener := channeltest.NewOpener().Attach("/dev/ttyACM0", port)
	m := channel.NewManager(
		channel.WithOpener(opener.Open),
		channel.WithSettleDelay(time.Hour),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Open(ctx, "/dev/ttyACM0", 115200)
	if !errors.Is(err, channel.ErrConnection) || !errors.Is(err, context.Canceled) {
		t.Errorf("Expected ErrConnection wrapping context.Canceled, got %v", err)
	}
	if !port.Closed() {
		t.Error("Port should be closed when the settle wait is abandoned")
	}
}

func TestManagerIsOpenNoticesUnplug(t *testing.T) {
	port := channeltest.NewPort()
	m := channeltest.NewManager(channeltest.NewOpener().Attach("/dev/ttyACM0", port))

	h, err := m.Open(context.Background(), "/dev/ttyACM0", 115200)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	port.Unplug()
	if m.IsOpen(h) {
		t.Error("IsOpen should be false once the device is gone")
	}
}

func TestManagerListCandidates(t *testing.T) {
	m := channeltest.NewManager(channeltest.NewOpener())
	ports, err := m.ListCandidates()
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	if len(ports) != 0 {
		t.Errorf("Expected empty candidate list, got %v", ports)
	}

	m = channel.NewManager(channel.WithLister(func() ([]string, error) {
		return nil, errors.New("no /dev")
	}))
	if _, err := m.ListCandidates(); err == nil {
		t.Error("Expected lister error to surface")
	}
}

func TestManagerDescribeWithoutDetails(t *testing.T) {
	m := channeltest.NewManager(channeltest.NewOpener(), "/dev/ttyUSB0")
	infos, err := m.Describe()
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if len(infos) != 1 || infos[0].Path != "/dev/ttyUSB0" || infos[0].IsUSB {
		t.Errorf("Describe = %+v", infos)
	}
}
