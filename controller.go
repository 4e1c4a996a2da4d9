package rfidclone

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/allbin/go-rfidclone/channel"
	"github.com/allbin/go-rfidclone/protocol"
	"github.com/rs/zerolog"
)

// Channels is the part of channel.Manager the controller drives
type Channels interface {
	ListCandidates() ([]string, error)
	Open(ctx context.Context, path string, baudRate int) (channel.Handle, error)
	Close(h channel.Handle)
	IsOpen(h channel.Handle) bool
}

var _ Channels = (*channel.Manager)(nil)

// Sender sends one command and returns the reply line
type Sender interface {
	Send(ctx context.Context, h channel.Handle, cmd protocol.Command, readTimeout time.Duration) (string, error)
}

var _ Sender = (*protocol.Client)(nil)

// Journal persists one entry per action
type Journal interface {
	Record(ctx context.Context, e Entry) error
}

// Controller owns the workflow state. Actions are serialised: one runs at a
// time and each completes before the next starts.
type Controller struct {
	mu    sync.Mutex
	state State

	channels         Channels
	sender           Sender
	baudRate         int
	replyTimeout     time.Duration
	handshakeTimeout time.Duration
	logger           zerolog.Logger
	journal          Journal
	observers        []func(Event)
	now              func() time.Time
}

// Option configures a Controller
type Option func(*Controller)

// WithBaudRate sets the rate passed to Channels.Open
func WithBaudRate(rate int) Option {
	return func(c *Controller) { c.baudRate = rate }
}

// WithReplyTimeout sets the timeout for READ_UID and WRITE_UID
func WithReplyTimeout(d time.Duration) Option {
	return func(c *Controller) { c.replyTimeout = d }
}

// WithHandshakeTimeout sets the timeout for the CHECK_HW sent on connect
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Controller) { c.handshakeTimeout = d }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithJournal records every action to j. Journal failures are logged and
// do not affect the action's result.
func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithObserver registers fn to be called after every action. Observers run
// while the controller is locked and must not call back into it.
func WithObserver(fn func(Event)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// WithClock sets the time source used for journal entries
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController returns a Controller in the Disconnected state
func NewController(channels Channels, sender Sender, opts ...Option) *Controller {
	c := &Controller{
		state:            disconnected(),
		channels:         channels,
		sender:           sender,
		baudRate:         channel.DefaultBaudRate,
		replyTimeout:     protocol.DefaultReplyTimeout,
		handshakeTimeout: protocol.DefaultHandshakeTimeout,
		logger:           zerolog.Nop(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New wires a Controller to a channel.Manager through a protocol.Client
func New(m *channel.Manager, opts ...Option) *Controller {
	c := NewController(m, nil, opts...)
	c.sender = protocol.NewClient(m, protocol.WithLogger(c.logger))
	return c
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ListCandidates returns the ports Connect accepts
func (c *Controller) ListCandidates() ([]string, error) {
	return c.channels.ListCandidates()
}

// Connect opens path and verifies the reader with CHECK_HW. Any channel
// already held is closed first. The result state is HardwareVerified,
// HardwareSuspect, or Disconnected when the port could not be opened.
func (c *Controller) Connect(ctx context.Context, path string) (Result, error) {
	return c.run(ctx, ActionConnect, func(from State) Result { return c.connect(ctx, from, path) })
}

// Disconnect closes the channel, if any. It never fails.
func (c *Controller) Disconnect(ctx context.Context) Result {
	res, _ := c.run(ctx, ActionDisconnect, c.disconnect)
	return res
}

// ReadSource reads the UID of the tag on the reader. On success the state
// becomes SourceCaptured; failures leave it unchanged unless the channel
// was lost.
func (c *Controller) ReadSource(ctx context.Context) (Result, error) {
	return c.run(ctx, ActionReadSource, func(from State) Result { return c.readSource(ctx, from) })
}

// WriteTarget writes the captured UID to the tag on the reader. It is only
// accepted in SourceCaptured; elsewhere it fails with ErrPrecondition and
// nothing is sent.
func (c *Controller) WriteTarget(ctx context.Context) (Result, error) {
	return c.run(ctx, ActionWriteTarget, func(from State) Result { return c.writeTarget(ctx, from) })
}

func (c *Controller) run(ctx context.Context, action Action, step func(State) Result) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.state
	res := step(from)
	res.Action = action
	c.state = res.State
	c.finish(ctx, from, res)
	return res, res.Err
}

func (c *Controller) finish(ctx context.Context, from State, res Result) {
	ev := c.logger.Info()
	if res.Err != nil {
		ev = c.logger.Warn().Err(res.Err)
	}
	ev.Str("action", res.Action.String()).
		Str("port", res.Port).
		Stringer("from", from.Phase).
		Stringer("to", res.State.Phase).
		Msg(res.Log)

	if c.journal != nil {
		entry := Entry{
			At:      c.now(),
			Action:  res.Action,
			Port:    res.Port,
			From:    from.Phase,
			To:      res.State.Phase,
			UID:     res.State.UID,
			Outcome: res.Outcome(),
			Message: res.Log,
		}
		// Record after cancellation too; the attempt still happened
		if err := c.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
			c.logger.Error().Err(err).Msg("journal record failed")
		}
	}

	for _, fn := range c.observers {
		fn(Event{Action: res.Action, From: from, To: res.State, Result: res})
	}
}

func (c *Controller) connect(ctx context.Context, from State, path string) Result {
	res := Result{Port: path}
	if path == "" {
		return c.connectFailed(from, res, fmt.Errorf("%w: no port selected", ErrConnection))
	}
	candidates, err := c.channels.ListCandidates()
	if err != nil {
		return c.connectFailed(from, res, fmt.Errorf("%w: listing ports: %w", ErrConnection, err))
	}
	if !slices.Contains(candidates, path) {
		return c.connectFailed(from, res, fmt.Errorf("%w: %s is not an available port", ErrConnection, path))
	}

	if from.IsConnected() {
		c.channels.Close(from.Channel)
	}
	h, err := c.channels.Open(ctx, path, c.baudRate)
	if err != nil {
		res.Err = err
		res.State = disconnected()
		res.Log = fmt.Sprintf("Could not open %s: %v", path, err)
		return res
	}

	res.State = connectedOn(h)
	reply, err := c.sender.Send(ctx, h, protocol.CheckHardware(), c.handshakeTimeout)
	if err != nil {
		if resp, ok := protocol.TransportResponse(err); ok {
			res.Response = resp
		}
		if protocol.Lost(err) || !c.channels.IsOpen(h) {
			c.channels.Close(h)
			res.Err = err
			res.State = disconnected()
			res.Log = fmt.Sprintf("Lost %s during hardware check: %v", path, err)
			return res
		}
		reason := transportReason(err)
		res.Err = fmt.Errorf("%w: %w", ErrHardwareSuspect, err)
		res.State = suspect(h, reason)
		res.Log = fmt.Sprintf("Connected to %s but hardware check failed: %s", path, reason)
		return res
	}

	res.Response = protocol.Classify(protocol.KindCheckHardware, reply)
	if res.Response.Kind == protocol.HardwareReady {
		res.State = verified(h)
		res.Log = fmt.Sprintf("Connected to %s, reader ready", path)
		return res
	}
	reason := describe(res.Response)
	res.Err = fmt.Errorf("%w: %s", ErrHardwareSuspect, reason)
	res.State = suspect(h, reason)
	res.Log = fmt.Sprintf("Connected to %s but hardware check failed: %s", path, reason)
	return res
}

// connectFailed reports a rejected Connect. Any channel still held is
// released so the state is Disconnected.
func (c *Controller) connectFailed(from State, res Result, err error) Result {
	if from.IsConnected() {
		c.channels.Close(from.Channel)
	}
	res.Err = err
	res.State = disconnected()
	res.Log = fmt.Sprintf("Connect failed: %v", err)
	return res
}

func (c *Controller) disconnect(from State) Result {
	res := Result{Port: from.Channel.Path(), State: disconnected()}
	if !from.IsConnected() {
		res.Log = "Already disconnected"
		return res
	}
	c.channels.Close(from.Channel)
	res.Log = fmt.Sprintf("Disconnected from %s", from.Channel.Path())
	return res
}

func (c *Controller) readSource(ctx context.Context, from State) Result {
	res := Result{Port: from.Channel.Path()}
	if lost, ok := c.checkChannel(from, res); ok {
		return lost
	}
	if !from.CanRead() {
		return precondition(from, res, "read needs a verified reader")
	}

	h := from.Channel
	reply, err := c.sender.Send(ctx, h, protocol.ReadUID(), c.replyTimeout)
	if err != nil {
		return c.transportFailed(from, res, err, "Read")
	}

	res.Response = protocol.Classify(protocol.KindReadUID, reply)
	switch r := res.Response; r.Kind {
	case protocol.ReadSuccess:
		res.State = captured(h, r.UID, r.CardType)
		res.Log = fmt.Sprintf("Read UID %s (%s)", r.UID, r.CardType)
	default:
		res.Err = replyError(r)
		res.State = from
		res.Log = fmt.Sprintf("Read failed: %v", res.Err)
	}
	return res
}

func (c *Controller) writeTarget(ctx context.Context, from State) Result {
	res := Result{Port: from.Channel.Path()}
	if !from.CanWrite() {
		return precondition(from, res, "write needs a captured source UID")
	}
	if lost, ok := c.checkChannel(from, res); ok {
		return lost
	}

	cmd, err := protocol.WriteUID(from.UID)
	if err != nil {
		return precondition(from, res, err.Error())
	}
	h := from.Channel
	reply, err := c.sender.Send(ctx, h, cmd, c.replyTimeout)
	if err != nil {
		return c.transportFailed(from, res, err, "Write")
	}

	res.Response = protocol.Classify(protocol.KindWriteUID, reply)
	switch r := res.Response; r.Kind {
	case protocol.WriteSuccess:
		res.State = cloned(h, from.UID)
		res.Log = fmt.Sprintf("Wrote UID %s to target tag", from.UID)
	case protocol.Locked:
		res.Err = replyError(r)
		res.State = from
		res.Log = "Target tag is locked, use a writable tag"
	default:
		res.Err = replyError(r)
		res.State = from
		res.Log = fmt.Sprintf("Write failed: %v", res.Err)
	}
	return res
}

// checkChannel forces Disconnected when the held channel has gone away
func (c *Controller) checkChannel(from State, res Result) (Result, bool) {
	if !from.IsConnected() || c.channels.IsOpen(from.Channel) {
		return res, false
	}
	c.channels.Close(from.Channel)
	res.Err = fmt.Errorf("%w: %s closed", protocol.ErrNotConnected, from.Channel.Path())
	res.Response = protocol.Response{Kind: protocol.NotConnected}
	res.State = disconnected()
	res.Log = fmt.Sprintf("Lost connection to %s", from.Channel.Path())
	return res, true
}

func (c *Controller) transportFailed(from State, res Result, err error, what string) Result {
	res.Err = err
	if resp, ok := protocol.TransportResponse(err); ok {
		res.Response = resp
	}
	if protocol.Lost(err) || !c.channels.IsOpen(from.Channel) {
		c.channels.Close(from.Channel)
		res.State = disconnected()
		res.Log = fmt.Sprintf("%s failed, lost connection to %s", what, from.Channel.Path())
		return res
	}
	res.State = from
	res.Log = fmt.Sprintf("%s failed: %s", what, transportReason(err))
	return res
}

func precondition(from State, res Result, msg string) Result {
	res.Err = fmt.Errorf("%w: %s in %s", ErrPrecondition, msg, from.Phase)
	res.State = from
	res.Log = fmt.Sprintf("Not allowed: %s", msg)
	return res
}

func replyError(r protocol.Response) error {
	switch r.Kind {
	case protocol.Locked:
		return ErrCardLocked
	case protocol.GenericError, protocol.HardwareFailure:
		return fmt.Errorf("%w: %s", ErrDeviceError, r.Message)
	case protocol.Malformed:
		return fmt.Errorf("%w: %q", ErrMalformedReply, r.Raw)
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedReply, r)
	}
}

func describe(r protocol.Response) string {
	switch r.Kind {
	case protocol.HardwareFailure, protocol.GenericError:
		return r.Message
	case protocol.Malformed:
		return fmt.Sprintf("unrecognised reply %q", r.Raw)
	default:
		return fmt.Sprintf("unexpected reply %s", r)
	}
}

func transportReason(err error) string {
	var te *protocol.TransportError
	if errors.As(err, &te) {
		return te.Reason.String()
	}
	return err.Error()
}
