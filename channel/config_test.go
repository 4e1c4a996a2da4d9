package channel

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}
	if config.DataBits != 8 {
		t.Errorf("Expected DataBits 8, got %d", config.DataBits)
	}
	if config.StopBits != 1 {
		t.Errorf("Expected StopBits 1, got %d", config.StopBits)
	}
	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}
}

func TestFunctionalOptions(t *testing.T) {
	config, err := applyOptions([]Option{
		WithBaudRate(9600),
		WithDataBits(7),
		WithStopBits(2),
		WithParity(ParityEven),
	})
	if err != nil {
		t.Fatalf("applyOptions failed: %v", err)
	}

	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}
	if config.DataBits != 7 {
		t.Errorf("Expected DataBits 7, got %d", config.DataBits)
	}
	if config.StopBits != 2 {
		t.Errorf("Expected StopBits 2, got %d", config.StopBits)
	}
	if config.Parity != ParityEven {
		t.Errorf("Expected Parity Even, got %v", config.Parity)
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"baud 123456", WithBaudRate(123456), ErrInvalidBaudRate},
		{"data bits 9", WithDataBits(9), ErrInvalidConfig},
		{"data bits 4", WithDataBits(4), ErrInvalidConfig},
		{"stop bits 3", WithStopBits(3), ErrInvalidConfig},
		{"parity 7", WithParity(Parity(7)), ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := applyOptions([]Option{tt.opt})
			if err != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetBaudRate(t *testing.T) {
	tests := []struct {
		input    int
		hasError bool
	}{
		{115200, false},
		{9600, false},
		{57600, false},
		{0, true},
		{123456, true},
	}

	for _, test := range tests {
		result, err := getBaudRate(test.input)
		if test.hasError {
			if err != ErrInvalidBaudRate {
				t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", test.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for baud rate %d: %v", test.input, err)
		}
		if result == 0 {
			t.Errorf("Got zero result for valid baud rate %d", test.input)
		}
	}
}

func TestParseParity(t *testing.T) {
	tests := []struct {
		input    string
		expected Parity
		wantErr  bool
	}{
		{"none", ParityNone, false},
		{"", ParityNone, false},
		{"ODD", ParityOdd, false},
		{"e", ParityEven, false},
		{"mark", ParityNone, true},
	}

	for _, test := range tests {
		result, err := ParseParity(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseParity(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if test.wantErr {
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ParseParity(%q) error = %v, expected ErrInvalidConfig", test.input, err)
			}
			continue
		}
		if result != test.expected {
			t.Errorf("ParseParity(%q) = %v, expected %v", test.input, result, test.expected)
		}
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("/dev/nonexistent-rfid-reader")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestOpenRejectsInvalidOption(t *testing.T) {
	_, err := Open("/dev/null", WithBaudRate(1))
	if err != ErrInvalidBaudRate {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}
