package protocol

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind identifies which command a reply answers
type Kind int

const (
	KindCheckHardware Kind = iota + 1
	KindReadUID
	KindWriteUID
)

func (k Kind) String() string {
	switch k {
	case KindCheckHardware:
		return "CHECK_HW"
	case KindReadUID:
		return "READ_UID"
	case KindWriteUID:
		return "WRITE_UID"
	default:
		return "UNKNOWN"
	}
}

// Command is an immutable request to the reader firmware
type Command struct {
	kind Kind
	uid  string
}

// CheckHardware asks the firmware to self-test the RC522 reader
func CheckHardware() Command { return Command{kind: KindCheckHardware} }

// ReadUID asks the firmware to wait for a tag and report its UID
func ReadUID() Command { return Command{kind: KindReadUID} }

// WriteUID asks the firmware to rewrite block 0 of a magic tag with uid
func WriteUID(uid string) (Command, error) {
	if err := ValidateUID(uid); err != nil {
		return Command{}, err
	}
	return Command{kind: KindWriteUID, uid: uid}, nil
}

// ValidateUID checks that uid is a single non-empty wire token
func ValidateUID(uid string) error {
	if uid == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUID)
	}
	if strings.ContainsRune(uid, ':') {
		return fmt.Errorf("%w: %q contains ':'", ErrInvalidUID, uid)
	}
	for _, r := range uid {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidUID, uid)
		}
	}
	return nil
}

// IsHex reports whether uid is an even-length hexadecimal string
func IsHex(uid string) bool {
	if uid == "" || len(uid)%2 != 0 {
		return false
	}
	for _, r := range uid {
		if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return false
		}
	}
	return true
}

func (c Command) Kind() Kind { return c.kind }

// UID returns the UID carried by a WriteUID command
func (c Command) UID() string { return c.uid }

// Wire returns the command line without its terminator
func (c Command) Wire() string {
	if c.kind == KindWriteUID {
		return "WRITE_UID:" + c.uid
	}
	return c.kind.String()
}

func (c Command) String() string { return c.Wire() }
