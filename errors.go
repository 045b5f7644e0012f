package chatsocket

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrClosed    = errors.New("chatsocket: connection closed")
	ErrNoAddress = errors.New("chatsocket: no address configured")
	ErrQueueFull = errors.New("chatsocket: outbound queue full")

	errMissingType = errors.New("missing type discriminator")
)

// ConnectionError represents a connection-level error.
type ConnectionError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("chatsocket: %s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("chatsocket: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// SendError represents an error while transmitting a frame.
type SendError struct {
	Op  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("chatsocket: send %s: %v", e.Op, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// DecodeError is returned for an inbound payload that is not a valid frame.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("chatsocket: decode frame: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
