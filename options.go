package chatsocket

import (
	"log/slog"
	"time"
)

// ClientOption configures a chat client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	logger     *slog.Logger
	onSend     func(*OutboundFrame)
	onReceive  func(*InboundFrame)
	onChange   func(Snapshot)
	dialer     Dialer
	sessionID  string
	kinds      FrameKinds
	now        func() time.Time
	queueDepth int
}

const defaultQueueDepth = 64

func defaultConfig() clientConfig {
	return clientConfig{
		dialer:     WebSocketDialer(nil),
		kinds:      DefaultFrameKinds(),
		now:        time.Now,
		queueDepth: defaultQueueDepth,
	}
}

// WithLogger sets a structured logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithOnSend sets a callback invoked before each frame is transmitted.
func WithOnSend(fn func(*OutboundFrame)) ClientOption {
	return func(c *clientConfig) {
		c.onSend = fn
	}
}

// WithOnReceive sets a callback invoked for each decoded inbound frame,
// including ones the client ignores.
func WithOnReceive(fn func(*InboundFrame)) ClientOption {
	return func(c *clientConfig) {
		c.onReceive = fn
	}
}

// WithOnChange sets a callback invoked with a fresh snapshot after every
// change to status, typing flag or log. Calls are serialized and made in
// change order.
func WithOnChange(fn func(Snapshot)) ClientOption {
	return func(c *clientConfig) {
		c.onChange = fn
	}
}

// WithDialer replaces the WebSocket dialer, typically with a fake in tests.
func WithDialer(d Dialer) ClientOption {
	return func(c *clientConfig) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithSessionID attaches id to every outbound frame. An empty id leaves
// session_id off the wire.
func WithSessionID(id string) ClientOption {
	return func(c *clientConfig) {
		c.sessionID = id
	}
}

// WithFrameKinds sets which inbound type values are recognized and how they
// are treated.
func WithFrameKinds(kinds FrameKinds) ClientOption {
	return func(c *clientConfig) {
		if kinds != nil {
			c.kinds = kinds.clone()
		}
	}
}

// WithClock sets the source of capture timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(c *clientConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithQueueDepth sets how many outbound frames may wait for the writer.
func WithQueueDepth(n int) ClientOption {
	return func(c *clientConfig) {
		if n > 0 {
			c.queueDepth = n
		}
	}
}
