package protocol

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/allbin/go-rfidclone/channel"
	"github.com/rs/zerolog"
)

// Reply timeouts. The first command after opening gets the longer handshake
// window because the firmware may still be initialising the reader; callers
// pick which one to pass to Send.
const (
	DefaultReplyTimeout     = 5 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
)

// maxLineLength caps a reply; longer input is returned as-is for classification
const maxLineLength = 1024

// Channels is the part of channel.Manager the client needs
type Channels interface {
	IsOpen(h channel.Handle) bool
	Port(h channel.Handle) (channel.Port, bool)
	Close(h channel.Handle)
}

var _ Channels = (*channel.Manager)(nil)

// Client sends one command at a time and returns the reply line.
// It does not queue: concurrent Sends on one handle are a caller bug.
type Client struct {
	channels Channels
	logger   zerolog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient returns a Client over channels
func NewClient(channels Channels, opts ...ClientOption) *Client {
	c := &Client{
		channels: channels,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send writes cmd on h and waits up to readTimeout for one reply line, which
// is returned trimmed. Stale input is discarded before writing. A failure of
// the stream itself closes h.
func (c *Client) Send(ctx context.Context, h channel.Handle, cmd Command, readTimeout time.Duration) (string, error) {
	kind := cmd.Kind()
	if !c.channels.IsOpen(h) {
		return "", &TransportError{Reason: ReasonNotConnected, Command: kind}
	}
	port, ok := c.channels.Port(h)
	if !ok {
		return "", &TransportError{Reason: ReasonNotConnected, Command: kind}
	}

	if err := port.FlushInput(); err != nil {
		return "", c.lost(h, kind, err)
	}

	wire := cmd.Wire()
	frame := []byte(wire + "\n")
	n, err := port.Write(frame)
	if err != nil {
		return "", c.lost(h, kind, err)
	}
	if n != len(frame) {
		return "", c.lost(h, kind, channel.ErrIO)
	}
	c.logger.Debug().Str("port", h.Path()).Str("command", wire).Msg("sent")

	readCtx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	line, err := readLine(readCtx, port)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.logger.Debug().Str("port", h.Path()).Str("command", wire).
			Dur("timeout", readTimeout).Bytes("partial", line).Msg("reply timed out")
		return "", &TransportError{Reason: ReasonTimeout, Command: kind}
	case errors.Is(err, context.Canceled):
		return "", &TransportError{Reason: ReasonCanceled, Command: kind, Err: err}
	case err != nil:
		return "", c.lost(h, kind, err)
	}

	reply := string(bytes.TrimSpace(line))
	if reply == "" {
		return "", &TransportError{Reason: ReasonNoResponse, Command: kind}
	}
	c.logger.Debug().Str("port", h.Path()).Str("command", wire).Str("reply", reply).Msg("received")
	return reply, nil
}

func (c *Client) lost(h channel.Handle, kind Kind, err error) error {
	c.logger.Warn().Err(err).Str("port", h.Path()).Str("command", kind.String()).Msg("channel lost")
	c.channels.Close(h)
	return &TransportError{Reason: ReasonDisconnected, Command: kind, Err: err}
}

// readLine reads until the first '\n'. Bytes after it belong to nobody and
// are dropped by the next Send's flush.
func readLine(ctx context.Context, port channel.Port) ([]byte, error) {
	var line []byte
	buf := make([]byte, 64)
	for {
		n, err := port.ReadContext(ctx, buf)
		if n > 0 {
			chunk := buf[:n]
			if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
				return append(line, chunk[:i]...), nil
			}
			line = append(line, chunk...)
			if len(line) >= maxLineLength {
				return line, nil
			}
		}
		if err != nil {
			return line, err
		}
	}
}
