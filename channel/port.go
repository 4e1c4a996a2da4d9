package channel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// pollInterval bounds a single poll(2) so context cancellation is noticed promptly
const pollInterval = 100 * time.Millisecond

// Port is a byte stream to the reader's microcontroller
type Port interface {
	Read(buf []byte) (int, error)
	ReadContext(ctx context.Context, buf []byte) (int, error)
	Write(data []byte) (int, error)
	FlushInput() error
	// Alive reports whether the port is open and its device node still exists.
	Alive() bool
	Close() error
}

// port is the termios implementation of the Port interface
type port struct {
	mu     sync.RWMutex
	fd     int
	path   string
	config Config
	closed bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 2000000:
		return unix.B2000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// Open opens a serial port with the given device path and options.
// Opening asserts DTR, which reboots Arduino-class boards; callers that talk to
// such a board must wait for it to come back before writing (see Manager).
func Open(device string, opts ...Option) (Port, error) {
	config, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	// O_NONBLOCK keeps open(2) from hanging on a line without carrier
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, openError(device, err)
	}

	if err := configurePort(fd, config); err != nil {
		unix.Close(fd)
		return nil, err
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to clear O_NONBLOCK on %s: %v", device, err)
	}

	return &port{
		fd:     fd,
		path:   device,
		config: config,
	}, nil
}

func openError(device string, err error) error {
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, device)
	default:
		return fmt.Errorf("failed to open %s: %v", device, err)
	}
}

// configurePort puts the line in raw mode with the configured framing
func configurePort(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %v", err)
	}

	termios.Cflag = unix.CREAD | unix.CLOCAL | unix.HUPCL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// Reads are bounded by poll(2), not VTIME
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	baudRate, err := getBaudRate(config.BaudRate)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	switch config.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	default:
		termios.Cflag |= unix.CS8
	}

	if config.StopBits == 2 {
		termios.Cflag |= unix.CSTOPB
	}

	switch config.Parity {
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %v", err)
	}
	return nil
}

// waitReadable blocks until fd has input or timeout elapses
func waitReadable(fd int, timeout time.Duration) (bool, error) {
	ms := int((timeout + time.Millisecond - 1) / time.Millisecond)
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}

	n, err := unix.Poll(fds, ms)
	if errors.Is(err, unix.EINTR) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: poll: %v", ErrIO, err)
	}
	if n == 0 {
		return false, nil
	}

	revents := fds[0].Revents
	if revents&unix.POLLIN == 0 && revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return false, fmt.Errorf("%w: device hung up", ErrIO)
	}
	return true, nil
}

// Close closes the serial port
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	err := unix.Close(p.fd)
	p.closed = true
	return err
}

// Read reads whatever is available, blocking until at least one byte arrives
func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := unix.Read(p.fd, buf)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return n, nil
}

// ReadContext reads with context timeout support. It returns the context's
// error once the deadline passes with nothing to read.
func (p *port) ReadContext(ctx context.Context, buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		wait := pollInterval
		if deadline, ok := ctx.Deadline(); ok {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return 0, context.DeadlineExceeded
			}
			if remaining < wait {
				wait = remaining
			}
		}

		ready, err := waitReadable(p.fd, wait)
		if err != nil {
			return 0, err
		}
		if !ready {
			continue
		}

		n, err := unix.Read(p.fd, buf)
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if n == 0 {
			// readable with no bytes means the other end went away
			return 0, fmt.Errorf("%w: end of stream", ErrIO)
		}
		return n, nil
	}
}

// Write writes all of data, retrying short writes
func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	written := 0
	for written < len(data) {
		n, err := unix.Write(p.fd, data[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("%w: %v", ErrIO, err)
		}
		written += n
	}
	return written, nil
}

// FlushInput discards any unread input data
func (p *port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

// Alive is a local check: the fd is ours and the device node was not removed
func (p *port) Alive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}
	_, err := os.Stat(p.path)
	return err == nil
}
