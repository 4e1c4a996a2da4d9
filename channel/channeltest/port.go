// Package channeltest provides an in-memory reader board for tests of the
// protocol and workflow layers.
package channeltest

import (
	"context"
	"strings"
	"sync"

	"github.com/allbin/go-rfidclone/channel"
)

// Port is a scripted channel.Port. Each written line pops the next reply
// queued for that exact command; commands with no queued reply stay silent.
type Port struct {
	mu        sync.Mutex
	replies   map[string][]string
	pending   []byte
	writes    []string
	flushes   int
	closed    bool
	unplugged bool
	wake      chan struct{}
}

var _ channel.Port = (*Port)(nil)

// NewPort returns a silent board
func NewPort() *Port {
	return &Port{
		replies: make(map[string][]string),
		wake:    make(chan struct{}, 1),
	}
}

// Reply queues line (a newline is appended) as the answer to command
func (p *Port) Reply(command, line string) *Port {
	return p.ReplyRaw(command, line+"\n")
}

// ReplyRaw queues raw bytes as the answer to command
func (p *Port) ReplyRaw(command, raw string) *Port {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies[command] = append(p.replies[command], raw)
	return p
}

// Preload puts bytes in the input buffer as if left over from an earlier reply
func (p *Port) Preload(data string) {
	p.mu.Lock()
	p.pending = append(p.pending, data...)
	p.mu.Unlock()
	p.notify()
}

// Unplug simulates the device node disappearing
func (p *Port) Unplug() {
	p.mu.Lock()
	p.unplugged = true
	p.mu.Unlock()
	p.notify()
}

// Writes returns every buffer passed to Write, in order
func (p *Port) Writes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.writes...)
}

// Flushes returns how many times FlushInput was called
func (p *Port) Flushes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushes
}

// Closed reports whether Close was called
func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Port) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Port) Write(data []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, channel.ErrPortClosed
	}
	if p.unplugged {
		p.mu.Unlock()
		return 0, channel.ErrIO
	}
	p.writes = append(p.writes, string(data))
	command := strings.TrimRight(string(data), "\r\n")
	if queue := p.replies[command]; len(queue) > 0 {
		p.pending = append(p.pending, queue[0]...)
		p.replies[command] = queue[1:]
	}
	p.mu.Unlock()
	p.notify()
	return len(data), nil
}

func (p *Port) Read(buf []byte) (int, error) {
	return p.ReadContext(context.Background(), buf)
}

func (p *Port) ReadContext(ctx context.Context, buf []byte) (int, error) {
	for {
		p.mu.Lock()
		switch {
		case p.closed:
			p.mu.Unlock()
			return 0, channel.ErrPortClosed
		case p.unplugged:
			p.mu.Unlock()
			return 0, channel.ErrIO
		case len(p.pending) > 0:
			n := copy(buf, p.pending)
			p.pending = p.pending[n:]
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()

		select {
		case <-p.wake:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (p *Port) FlushInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return channel.ErrPortClosed
	}
	p.pending = nil
	p.flushes++
	return nil
}

func (p *Port) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && !p.unplugged
}

func (p *Port) reopen() {
	p.mu.Lock()
	p.closed = false
	p.pending = nil
	p.mu.Unlock()
}

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return channel.ErrPortClosed
	}
	p.closed = true
	return nil
}
