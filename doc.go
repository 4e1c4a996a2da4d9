// Package rfidclone drives an Arduino-hosted RFID reader through the steps of
// copying a tag's UID onto a writable blank.
//
// A Controller owns the workflow state and exposes four actions. Each action
// blocks until the reader has answered (or the reply timeout expired) and
// returns a Result with the classified reply, the new State and a log line.
//
//	m := channel.NewManager()
//	ctrl := rfidclone.New(m, rfidclone.WithLogger(logger))
//
//	res, err := ctrl.Connect(ctx, "/dev/ttyACM0") // HardwareVerified or HardwareSuspect
//	res, err = ctrl.ReadSource(ctx)               // SourceCaptured{uid, type}
//	// swap the source tag for a blank
//	res, err = ctrl.WriteTarget(ctx)              // Cloned{uid}
//
// # States
//
//	Disconnected --Connect--> HardwareVerified | HardwareSuspect
//	HardwareVerified, HardwareSuspect, SourceCaptured, Cloned --ReadSource--> SourceCaptured
//	SourceCaptured --WriteTarget--> Cloned
//	any --Disconnect--> Disconnected
//
// WriteTarget is refused with ErrPrecondition outside SourceCaptured and
// nothing is sent to the reader. Reading again after a clone starts over
// with the new source.
//
// # Timeouts
//
// The CHECK_HW sent right after opening uses the handshake timeout (10s by
// default) since the firmware may still be bringing up the reader. Reads and
// writes use the reply timeout (5s). A timeout leaves the state unchanged.
//
// # Errors
//
// Reader answers map onto ErrCardLocked, ErrDeviceError, ErrMalformedReply
// and ErrUnexpectedReply. Transport failures carry the protocol package's
// sentinels. If the channel goes away the controller drops to Disconnected
// before anything else is attempted.
//
//	if errors.Is(err, rfidclone.ErrCardLocked) {
//	    // ask for a different blank
//	}
package rfidclone
