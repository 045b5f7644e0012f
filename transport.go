package chatsocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// Transport provides the interface for sending and receiving frames.
// Receive returns the raw payload so a malformed frame does not end the
// connection. Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, frame *OutboundFrame) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens a Transport to address.
type Dialer func(ctx context.Context, address string) (Transport, error)

// DialOptions configures the WebSocket connection.
type DialOptions struct {
	// HTTPHeader specifies additional HTTP headers to send during handshake.
	HTTPHeader http.Header

	// HTTPClient is the HTTP client used for the handshake.
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// readLimit bounds a single inbound frame.
const readLimit = 1 << 20

// Dial connects to a chat backend and returns a Transport.
func Dial(ctx context.Context, url string, opts *DialOptions) (Transport, error) {
	dialOpts := &websocket.DialOptions{}
	if opts != nil {
		if opts.HTTPHeader != nil {
			dialOpts.HTTPHeader = opts.HTTPHeader.Clone()
		}
		dialOpts.HTTPClient = opts.HTTPClient
	}

	conn, _, err := websocket.Dial(ctx, url, dialOpts)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", URL: url, Err: err}
	}
	conn.SetReadLimit(readLimit)

	return &wsTransport{conn: conn}, nil
}

// WebSocketDialer returns a Dialer that uses Dial with opts.
func WebSocketDialer(opts *DialOptions) Dialer {
	return func(ctx context.Context, address string) (Transport, error) {
		return Dial(ctx, address, opts)
	}
}

// wsTransport implements Transport over WebSocket.
type wsTransport struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// Send writes a frame as a JSON text message.
func (t *wsTransport) Send(ctx context.Context, frame *OutboundFrame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return &SendError{Op: "marshal", Err: err}
	}

	if err := t.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}

	return nil
}

// Receive reads the next payload from the server.
func (t *wsTransport) Receive(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}
		return nil, &ConnectionError{Op: "read", Err: err}
	}
	return data, nil
}

// Close closes the transport.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	return t.conn.Close(websocket.StatusNormalClosure, "")
}

// isRemoteClose reports whether err is an orderly close rather than a
// transport failure.
func isRemoteClose(err error) bool {
	if errors.Is(err, ErrClosed) {
		return true
	}
	return websocket.CloseStatus(err) != -1
}
