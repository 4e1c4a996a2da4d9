package protocol

import (
	"errors"
	"fmt"
)

// ResponseKind is the closed set of reply classifications
type ResponseKind int

const (
	HardwareReady ResponseKind = iota + 1
	HardwareFailure
	ReadSuccess
	WriteSuccess
	Locked
	GenericError
	Malformed
	Timeout
	NotConnected
)

func (k ResponseKind) String() string {
	switch k {
	case HardwareReady:
		return "HardwareReady"
	case HardwareFailure:
		return "HardwareFailure"
	case ReadSuccess:
		return "ReadSuccess"
	case WriteSuccess:
		return "WriteSuccess"
	case Locked:
		return "Locked"
	case GenericError:
		return "GenericError"
	case Malformed:
		return "Malformed"
	case Timeout:
		return "Timeout"
	case NotConnected:
		return "NotConnected"
	default:
		return "Unknown"
	}
}

// Response is a classified reply. Only the fields belonging to Kind are set:
// Message for HardwareFailure and GenericError, UID and CardType for
// ReadSuccess, Raw for Malformed.
type Response struct {
	Kind     ResponseKind
	Message  string
	UID      string
	CardType string
	Raw      string
}

func (r Response) String() string {
	switch r.Kind {
	case HardwareFailure, GenericError:
		return fmt.Sprintf("%s(%s)", r.Kind, r.Message)
	case ReadSuccess:
		return fmt.Sprintf("%s(%s, %s)", r.Kind, r.UID, r.CardType)
	case Malformed:
		return fmt.Sprintf("%s(%q)", r.Kind, r.Raw)
	default:
		return r.Kind.String()
	}
}

// TransportResponse maps a Send failure onto the Timeout and NotConnected
// variants. Other failures have no Response form.
func TransportResponse(err error) (Response, bool) {
	switch {
	case errors.Is(err, ErrTimeout):
		return Response{Kind: Timeout}, true
	case Lost(err):
		return Response{Kind: NotConnected}, true
	default:
		return Response{}, false
	}
}
