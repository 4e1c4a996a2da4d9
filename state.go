package rfidclone

import (
	"fmt"

	"github.com/allbin/go-rfidclone/channel"
)

// Phase names the active workflow state
type Phase int

const (
	Disconnected Phase = iota
	Connected
	HardwareVerified
	HardwareSuspect
	SourceCaptured
	Cloned
)

func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case HardwareVerified:
		return "HardwareVerified"
	case HardwareSuspect:
		return "HardwareSuspect"
	case SourceCaptured:
		return "SourceCaptured"
	case Cloned:
		return "Cloned"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is an immutable snapshot of the workflow. Which fields are set
// depends on Phase:
//
//	Disconnected      -
//	Connected         Channel
//	HardwareVerified  Channel
//	HardwareSuspect   Channel, Reason
//	SourceCaptured    Channel, UID, CardType
//	Cloned            Channel, UID
type State struct {
	Phase    Phase
	Channel  channel.Handle
	UID      string
	CardType string
	Reason   string
}

func disconnected() State { return State{Phase: Disconnected} }

func connectedOn(h channel.Handle) State { return State{Phase: Connected, Channel: h} }

func verified(h channel.Handle) State { return State{Phase: HardwareVerified, Channel: h} }

func suspect(h channel.Handle, reason string) State {
	return State{Phase: HardwareSuspect, Channel: h, Reason: reason}
}

func captured(h channel.Handle, uid, cardType string) State {
	return State{Phase: SourceCaptured, Channel: h, UID: uid, CardType: cardType}
}

func cloned(h channel.Handle, uid string) State {
	return State{Phase: Cloned, Channel: h, UID: uid}
}

// IsConnected reports whether the state holds a channel
func (s State) IsConnected() bool { return s.Phase != Disconnected }

// CanRead reports whether ReadSource is accepted in this state
func (s State) CanRead() bool {
	switch s.Phase {
	case HardwareVerified, HardwareSuspect, SourceCaptured, Cloned:
		return true
	default:
		return false
	}
}

// CanWrite reports whether WriteTarget is accepted in this state
func (s State) CanWrite() bool { return s.Phase == SourceCaptured }

func (s State) String() string {
	switch s.Phase {
	case Disconnected:
		return "Disconnected"
	case HardwareSuspect:
		return fmt.Sprintf("HardwareSuspect{%s, %s}", s.Channel.Path(), s.Reason)
	case SourceCaptured:
		return fmt.Sprintf("SourceCaptured{%s, %s, %s}", s.Channel.Path(), s.UID, s.CardType)
	case Cloned:
		return fmt.Sprintf("Cloned{%s, %s}", s.Channel.Path(), s.UID)
	default:
		return fmt.Sprintf("%s{%s}", s.Phase, s.Channel.Path())
	}
}
