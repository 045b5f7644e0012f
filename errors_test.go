package chatsocket

import (
	"errors"
	"testing"
)

func TestConnectionError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := &ConnectionError{Op: "dial", Err: underlying}

	if err.Error() != "chatsocket: dial: connection refused" {
		t.Errorf("Error() = %s", err.Error())
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should return true for underlying error")
	}
}

func TestConnectionError_WithURL(t *testing.T) {
	underlying := errors.New("connection refused")
	err := &ConnectionError{Op: "dial", URL: "ws://localhost:8000/ws", Err: underlying}

	expected := "chatsocket: dial ws://localhost:8000/ws: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestSendError(t *testing.T) {
	underlying := errors.New("write failed")
	err := &SendError{Op: "write", Err: underlying}

	expected := "chatsocket: send write: write failed"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should return true for underlying error")
	}
}

func TestDecodeError(t *testing.T) {
	err := &DecodeError{Err: errMissingType}

	expected := "chatsocket: decode frame: missing type discriminator"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, errMissingType) {
		t.Error("errors.Is should return true for underlying error")
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrClosed, "chatsocket: connection closed"},
		{ErrNoAddress, "chatsocket: no address configured"},
		{ErrQueueFull, "chatsocket: outbound queue full"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("Error() = %s, want %s", tt.err.Error(), tt.want)
		}
	}
}

func TestIsRemoteClose(t *testing.T) {
	if !isRemoteClose(ErrClosed) {
		t.Error("ErrClosed should count as remote close")
	}
	if isRemoteClose(&ConnectionError{Op: "read", Err: errors.New("reset")}) {
		t.Error("plain read failure should not count as remote close")
	}
}
