package rfidclone

import (
	"errors"
	"time"

	"github.com/allbin/go-rfidclone/protocol"
)

// Action names a user-facing operation
type Action int

const (
	ActionConnect Action = iota + 1
	ActionDisconnect
	ActionReadSource
	ActionWriteTarget
)

func (a Action) String() string {
	switch a {
	case ActionConnect:
		return "connect"
	case ActionDisconnect:
		return "disconnect"
	case ActionReadSource:
		return "read"
	case ActionWriteTarget:
		return "write"
	default:
		return "unknown"
	}
}

// Result is what an action produced. Response is the classified reply, or
// the zero Response when no reply line was obtained. State is the state
// after the action; Log is a one-line summary for display.
type Result struct {
	Action   Action
	Port     string
	Response protocol.Response
	Err      error
	State    State
	Log      string
}

// OK reports whether the action succeeded
func (r Result) OK() bool { return r.Err == nil }

// Outcome is a stable short label for the result, used in the journal
func (r Result) Outcome() string {
	err := r.Err
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConnection):
		return "connection_error"
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	case errors.Is(err, ErrHardwareSuspect):
		return "hardware_suspect"
	case errors.Is(err, ErrCardLocked):
		return "locked"
	case errors.Is(err, ErrDeviceError):
		return "device_error"
	case errors.Is(err, ErrMalformedReply):
		return "malformed"
	case errors.Is(err, ErrUnexpectedReply):
		return "unexpected"
	case errors.Is(err, protocol.ErrTimeout):
		return "timeout"
	case errors.Is(err, protocol.ErrNoResponse):
		return "no_response"
	case errors.Is(err, protocol.ErrCanceled):
		return "canceled"
	case protocol.Lost(err):
		return "disconnected"
	default:
		return "error"
	}
}

// Event is delivered to observers after every action, in invocation order
type Event struct {
	Action Action
	From   State
	To     State
	Result Result
}

// Entry is one journal record
type Entry struct {
	At      time.Time
	Action  Action
	Port    string
	From    Phase
	To      Phase
	UID     string
	Outcome string
	Message string
}
