package rfidclone

import (
	"errors"

	"github.com/allbin/go-rfidclone/channel"
)

// Errors returned by Controller actions. Transport failures are reported
// with the protocol package's sentinels (protocol.ErrTimeout, ...).
var (
	// ErrConnection means the port could not be opened or is not a candidate.
	ErrConnection = channel.ErrConnection

	ErrPrecondition    = errors.New("action not allowed in current state")
	ErrHardwareSuspect = errors.New("reader hardware check failed")
	ErrCardLocked      = errors.New("target tag is locked")
	ErrDeviceError     = errors.New("reader reported an error")
	ErrMalformedReply  = errors.New("unrecognised reply")
	ErrUnexpectedReply = errors.New("reply does not fit the command")
)
