package channel

import "errors"

// Predefined error types for the channel layer
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")
	ErrIO               = errors.New("serial device I/O failure")

	// Manager errors
	ErrConnection  = errors.New("connection failed")
	ErrAlreadyOpen = errors.New("a channel is already open")
)
