package protocol

import (
	"errors"
	"testing"
)

func TestCommandWire(t *testing.T) {
	write, err := WriteUID("04A1B2C3")
	if err != nil {
		t.Fatalf("WriteUID failed: %v", err)
	}

	tests := []struct {
		cmd      Command
		kind     Kind
		expected string
	}{
		{CheckHardware(), KindCheckHardware, "CHECK_HW"},
		{ReadUID(), KindReadUID, "READ_UID"},
		{write, KindWriteUID, "WRITE_UID:04A1B2C3"},
	}

	for _, test := range tests {
		if got := test.cmd.Wire(); got != test.expected {
			t.Errorf("Wire() = %s, expected %s", got, test.expected)
		}
		if test.cmd.Kind() != test.kind {
			t.Errorf("Kind() = %v, expected %v", test.cmd.Kind(), test.kind)
		}
	}
	if write.UID() != "04A1B2C3" {
		t.Errorf("UID() = %s, expected 04A1B2C3", write.UID())
	}
}

func TestWriteUIDValidation(t *testing.T) {
	tests := []struct {
		uid     string
		wantErr bool
	}{
		{"04A1B2C3", false},
		{"deadbeef", false},
		{"", true},
		{"04:A1", true},
		{"04A1\nB2", true},
		{"04A1 B2", true},
		{"04A1\r", true},
	}

	for _, test := range tests {
		_, err := WriteUID(test.uid)
		if (err != nil) != test.wantErr {
			t.Errorf("WriteUID(%q) error = %v, wantErr %v", test.uid, err, test.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidUID) {
			t.Errorf("WriteUID(%q) error = %v, expected ErrInvalidUID", test.uid, err)
		}
	}
}

func TestIsHex(t *testing.T) {
	tests := []struct {
		uid      string
		expected bool
	}{
		{"04A1B2C3", true},
		{"04a1b2c3d4e5f6", true},
		{"04A", false},
		{"ZZ", false},
		{"", false},
	}

	for _, test := range tests {
		if got := IsHex(test.uid); got != test.expected {
			t.Errorf("IsHex(%q) = %v, expected %v", test.uid, got, test.expected)
		}
	}
}

func TestTransportErrorMatching(t *testing.T) {
	cause := errors.New("EIO")
	err := error(&TransportError{Reason: ReasonDisconnected, Command: KindReadUID, Err: cause})

	if !errors.Is(err, ErrDisconnected) {
		t.Error("Expected ErrDisconnected to match")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected cause to match")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("ErrTimeout must not match a disconnect")
	}
	if !Lost(err) {
		t.Error("Lost should be true for a disconnect")
	}
	if Lost(&TransportError{Reason: ReasonTimeout}) {
		t.Error("Lost should be false for a timeout")
	}

	var te *TransportError
	if !errors.As(err, &te) || te.Command != KindReadUID {
		t.Errorf("errors.As = %+v", te)
	}
}

func TestTransportResponse(t *testing.T) {
	tests := []struct {
		err      error
		expected Response
		ok       bool
	}{
		{&TransportError{Reason: ReasonTimeout}, Response{Kind: Timeout}, true},
		{&TransportError{Reason: ReasonNotConnected}, Response{Kind: NotConnected}, true},
		{&TransportError{Reason: ReasonDisconnected}, Response{Kind: NotConnected}, true},
		{&TransportError{Reason: ReasonNoResponse}, Response{}, false},
	}

	for _, test := range tests {
		got, ok := TransportResponse(test.err)
		if got != test.expected || ok != test.ok {
			t.Errorf("TransportResponse(%v) = %v, %v; expected %v, %v", test.err, got, ok, test.expected, test.ok)
		}
	}
}
