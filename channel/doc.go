// Package channel owns the byte-stream connection to the RFID reader board.
//
// It wraps a raw termios serial port (Linux, via golang.org/x/sys/unix) in a
// Manager that allows at most one open channel at a time, identified by an
// opaque Handle.
//
// # Basic Usage
//
//	m := channel.NewManager()
//	paths, err := m.ListCandidates()
//	h, err := m.Open(ctx, "/dev/ttyACM0", 115200) // blocks for the settle delay
//	defer m.Close(h)
//
// # Settle Delay
//
// Opening the line asserts DTR, and Arduino-class boards reboot when that
// happens. Bytes written during the boot loader window are dropped, so Open
// waits DefaultSettleDelay (2s) before handing back the handle.
//
// # Port Discovery
//
// ListPorts scans /dev for serial device nodes. Describe adds USB identity
// from go.bug.st/serial/enumerator and flags ports whose vendor ID belongs to
// a known board bridge (Arduino, CH340, FTDI, CP210x):
//
//	infos, _ := m.Describe()
//	if info, ok := channel.DetectController(infos); ok {
//	    fmt.Println("reader on", info.Path)
//	}
//
// # Error Handling
//
// Open failures wrap ErrConnection together with the underlying cause
// (ErrDeviceNotFound, ErrPermissionDenied, ...). Use errors.Is:
//
//	if errors.Is(err, channel.ErrConnection) {
//	    // path could not be opened
//	}
//
// Close is idempotent and never fails. IsOpen is a cheap local check that
// also notices a USB device node disappearing.
package channel
