package protocol

import (
	"errors"
	"fmt"
)

// Transport-level failures. A *TransportError matches exactly one of these
// through errors.Is.
var (
	ErrNotConnected = errors.New("channel not connected")
	ErrTimeout      = errors.New("no reply before timeout")
	ErrNoResponse   = errors.New("empty reply")
	ErrDisconnected = errors.New("channel lost")
	ErrCanceled     = errors.New("send canceled")
)

// ErrInvalidUID is returned when a UID cannot be put on the wire
var ErrInvalidUID = errors.New("invalid uid")

// Reason classifies a TransportError
type Reason int

const (
	ReasonNotConnected Reason = iota + 1
	ReasonTimeout
	ReasonNoResponse
	ReasonDisconnected
	ReasonCanceled
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonNotConnected:
		return ErrNotConnected
	case ReasonTimeout:
		return ErrTimeout
	case ReasonNoResponse:
		return ErrNoResponse
	case ReasonDisconnected:
		return ErrDisconnected
	case ReasonCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

func (r Reason) String() string {
	switch r {
	case ReasonNotConnected:
		return "not connected"
	case ReasonTimeout:
		return "timeout"
	case ReasonNoResponse:
		return "no response"
	case ReasonDisconnected:
		return "disconnected"
	case ReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// TransportError reports that a command produced no reply line to classify
type TransportError struct {
	Reason  Reason
	Command Kind
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Command, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// Unwrap exposes both the reason sentinel and the underlying cause
func (e *TransportError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Reason.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Lost reports whether err means the channel itself went away
func Lost(err error) bool {
	return errors.Is(err, ErrDisconnected) || errors.Is(err, ErrNotConnected)
}
