package channel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial/enumerator"
)

// DefaultSettleDelay is how long the board needs after the open-time reset
// before it reads bytes from the line.
const DefaultSettleDelay = 2 * time.Second

// Handle identifies one open channel. The zero Handle is never open.
type Handle struct {
	id   uint64
	path string
}

// Path returns the device path the handle was opened on
func (h Handle) Path() string { return h.path }

// IsZero reports whether h was never returned by Open
func (h Handle) IsZero() bool { return h.id == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("%s#%d", h.path, h.id)
}

// OpenFunc opens a device path; Open is the production implementation
type OpenFunc func(path string, opts ...Option) (Port, error)

// ListFunc enumerates candidate device paths; ListPorts is the production implementation
type ListFunc func() ([]string, error)

// DetailsFunc returns USB metadata for attached ports
type DetailsFunc func() ([]*enumerator.PortDetails, error)

// Manager owns at most one open channel for the whole process
type Manager struct {
	mu       sync.Mutex
	open     OpenFunc
	list     ListFunc
	details  DetailsFunc
	settle   time.Duration
	portOpts []Option
	logger   zerolog.Logger

	nextID  uint64
	current Handle
	port    Port
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithOpener replaces the function used to open device paths
func WithOpener(open OpenFunc) ManagerOption {
	return func(m *Manager) { m.open = open }
}

// WithLister replaces the function used to enumerate device paths
func WithLister(list ListFunc) ManagerOption {
	return func(m *Manager) { m.list = list }
}

// WithDetails replaces the USB metadata source
func WithDetails(details DetailsFunc) ManagerOption {
	return func(m *Manager) { m.details = details }
}

// WithSettleDelay sets the pause between a successful open and returning the handle
func WithSettleDelay(d time.Duration) ManagerOption {
	return func(m *Manager) { m.settle = d }
}

// WithPortOptions sets framing options applied to every open
func WithPortOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.portOpts = append(m.portOpts, opts...) }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager returns a Manager backed by the termios port unless overridden
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		open:    Open,
		list:    ListPorts,
		details: enumerator.GetDetailedPortsList,
		settle:  DefaultSettleDelay,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ListCandidates returns the currently available device paths
func (m *Manager) ListCandidates() ([]string, error) {
	paths, err := m.list()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	m.logger.Debug().Int("count", len(paths)).Msg("listed candidate ports")
	return paths, nil
}

// Describe lists candidates with USB metadata. Missing metadata is not an error.
func (m *Manager) Describe() ([]PortInfo, error) {
	paths, err := m.ListCandidates()
	if err != nil {
		return nil, err
	}

	var details []*enumerator.PortDetails
	if m.details != nil {
		details, err = m.details()
		if err != nil {
			m.logger.Warn().Err(err).Msg("USB port details unavailable")
			details = nil
		}
	}
	return describePorts(paths, details), nil
}

// Open opens path at baudRate and waits out the settle delay before returning.
// Only one handle may be open; a second Open fails with ErrAlreadyOpen.
func (m *Manager) Open(ctx context.Context, path string, baudRate int) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port != nil {
		return Handle{}, fmt.Errorf("%w: %s", ErrAlreadyOpen, m.current)
	}

	opts := append(append([]Option(nil), m.portOpts...), WithBaudRate(baudRate))
	p, err := m.open(path, opts...)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: %s: %w", ErrConnection, path, err)
	}

	if m.settle > 0 {
		m.logger.Debug().Str("port", path).Dur("settle", m.settle).Msg("waiting for board reset")
		timer := time.NewTimer(m.settle)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			_ = p.Close()
			return Handle{}, fmt.Errorf("%w: %s: %w", ErrConnection, path, ctx.Err())
		}
	}

	m.nextID++
	m.current = Handle{id: m.nextID, path: path}
	m.port = p
	m.logger.Info().Str("port", path).Int("baud", baudRate).Msg("channel open")
	return m.current, nil
}

// Close closes h. Closing a stale or zero handle is a no-op.
func (m *Manager) Close(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h.IsZero() || h != m.current || m.port == nil {
		return
	}
	if err := m.port.Close(); err != nil {
		m.logger.Debug().Err(err).Str("port", h.path).Msg("close reported error")
	}
	m.port = nil
	m.current = Handle{}
	m.logger.Info().Str("port", h.path).Msg("channel closed")
}

// IsOpen reports whether h is the current handle and its port is still alive
func (m *Manager) IsOpen(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h.IsZero() || h != m.current || m.port == nil {
		return false
	}
	return m.port.Alive()
}

// Port returns the stream behind h, if h is current
func (m *Manager) Port(h Handle) (Port, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h.IsZero() || h != m.current || m.port == nil {
		return nil, false
	}
	return m.port, true
}

// Current returns the open handle, or the zero Handle
func (m *Manager) Current() Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
