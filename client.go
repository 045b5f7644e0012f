package chatsocket

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Client is a real-time chat client bound to one backend address.
// It is safe for concurrent use by multiple goroutines; all reactions to
// socket events and calls to Send and Clear are serialized.
type Client struct {
	cfg    clientConfig
	ctx    context.Context
	notify *notifier

	// lifecycleMu serializes Redial and Close.
	lifecycleMu sync.Mutex

	mu      sync.Mutex
	address string
	active  *conn
	gen     uint64
	status  Status
	typing  bool
	log     conversationLog
	err     error
	closed  bool
}

// conn is one connection attempt. Reactions from a conn that is no longer
// active are ignored.
type conn struct {
	id      uint64
	address string
	ctx     context.Context
	cancel  context.CancelFunc
	outbox  chan *OutboundFrame
	done    chan struct{}
}

// Snapshot is a consistent copy of the client's observable state.
type Snapshot struct {
	Status Status
	Typing bool
	Log    []Entry
}

// New creates a client and starts connecting to address in the background.
// With an empty address the client stays closed and never dials.
func New(ctx context.Context, address string, opts ...ClientOption) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{
		cfg:    cfg,
		ctx:    ctx,
		status: StatusClosed,
	}
	if cfg.onChange != nil {
		c.notify = newNotifier(cfg.onChange)
		go c.notify.run()
	}

	address = strings.TrimSpace(address)

	c.mu.Lock()
	if address == "" {
		c.err = ErrNoAddress
	} else {
		c.startLocked(address)
	}
	c.mu.Unlock()

	return c
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsAssistantTyping reports whether the backend announced it is composing
// a reply that has not arrived yet.
func (c *Client) IsAssistantTyping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// Log returns a copy of the conversation log in observation order.
func (c *Client) Log() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.snapshot()
}

// Snapshot returns status, typing flag and log captured atomically.
func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Address returns the address of the current connection.
func (c *Client) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// Err returns the error that last closed a connection, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Send appends text to the log as a user message and queues it for
// transmission. It does nothing unless the connection is open. Delivery is
// best effort: transmission failures close the connection instead of being
// reported here.
func (c *Client) Send(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cn := c.active
	if cn == nil || c.status != StatusOpen {
		if c.cfg.logger != nil {
			c.cfg.logger.Debug("send ignored",
				slog.String("status", c.status.String()),
			)
		}
		return
	}

	c.log.append(Entry{
		Kind:       EntryOutgoingUser,
		Text:       text,
		OccurredAt: c.cfg.now(),
	})

	select {
	case cn.outbox <- NewOutboundFrame(text, c.cfg.sessionID):
	default:
		if c.cfg.logger != nil {
			c.cfg.logger.Warn("dropping outbound frame",
				slog.String("address", cn.address),
				slog.Any("error", ErrQueueFull),
			)
		}
	}

	c.changedLocked()
}

// Clear empties the log. It does not touch the connection or any history
// kept by the backend.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.log.len() == 0 {
		return
	}
	c.log.clear()
	c.changedLocked()
}

// Redial closes the current connection, waits until it is fully released,
// then connects to address. The log is kept. An empty address leaves the
// client closed and returns ErrNoAddress.
func (c *Client) Redial(address string) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	old := c.teardownLocked()
	c.mu.Unlock()

	if old != nil {
		<-old.done
	}

	address = strings.TrimSpace(address)

	c.mu.Lock()
	defer c.mu.Unlock()
	if address == "" {
		c.address = ""
		c.err = ErrNoAddress
		return ErrNoAddress
	}
	c.err = nil
	c.startLocked(address)
	c.changedLocked()
	return nil
}

// Close tears down the connection whatever its status, waits for its
// goroutines to exit and releases the transport. It is safe to call more
// than once. Change notifications already queued are still delivered.
func (c *Client) Close() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	old := c.teardownLocked()
	c.mu.Unlock()

	if old != nil {
		<-old.done
	}
	if c.notify != nil {
		c.notify.stop()
	}
	return nil
}

// startLocked registers a new connection as active and dials it.
func (c *Client) startLocked(address string) {
	c.gen++
	ctx, cancel := context.WithCancel(c.ctx)
	cn := &conn{
		id:      c.gen,
		address: address,
		ctx:     ctx,
		cancel:  cancel,
		outbox:  make(chan *OutboundFrame, c.cfg.queueDepth),
		done:    make(chan struct{}),
	}
	c.active = cn
	c.address = address
	c.status = StatusConnecting

	if c.cfg.logger != nil {
		c.cfg.logger.Debug("connecting",
			slog.String("address", address),
			slog.Uint64("conn", cn.id),
		)
	}

	go c.run(cn)
}

// teardownLocked detaches and cancels the active connection and returns it
// so the caller can wait for it outside the lock.
func (c *Client) teardownLocked() *conn {
	cn := c.active
	if cn == nil {
		return nil
	}
	c.active = nil
	cn.cancel()

	if next, ok := transition(c.status, evTeardown); ok {
		c.status = next
		c.changedLocked()
	}
	return cn
}

// run owns one connection: dial, then read until the connection ends.
func (c *Client) run(cn *conn) {
	defer close(cn.done)
	defer cn.cancel()

	transport, err := c.cfg.dialer(cn.ctx, cn.address)
	if err != nil {
		c.lifecycle(cn, evDialFailed, err)
		return
	}

	if !c.attach(cn) {
		c.closeTransport(cn, transport)
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop(cn, transport)
	}()

	c.readLoop(cn, transport)

	cn.cancel()
	wg.Wait()
	c.closeTransport(cn, transport)
}

// attach opens cn if it is still the active connection.
func (c *Client) attach(cn *conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != cn || c.status != StatusConnecting {
		return false
	}
	c.status, _ = transition(c.status, evOpened)

	if c.cfg.logger != nil {
		c.cfg.logger.Debug("connected",
			slog.String("address", cn.address),
			slog.Uint64("conn", cn.id),
		)
	}
	c.changedLocked()
	return true
}

// lifecycle applies ev for cn if cn is still active.
func (c *Client) lifecycle(cn *conn, ev lifecycleEvent, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != cn {
		return
	}
	next, ok := transition(c.status, ev)
	if !ok {
		return
	}
	c.status = next
	if err != nil {
		c.err = err
	}
	if next == StatusClosed {
		cn.cancel()
	}

	if c.cfg.logger != nil {
		attrs := []any{
			slog.String("event", ev.String()),
			slog.String("address", cn.address),
			slog.Uint64("conn", cn.id),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		if ev == evTransportError || ev == evDialFailed {
			c.cfg.logger.Warn("connection closed", attrs...)
		} else {
			c.cfg.logger.Debug("connection closed", attrs...)
		}
	}
	c.changedLocked()
}

// readLoop reads payloads from the transport and dispatches them.
func (c *Client) readLoop(cn *conn, transport Transport) {
	for {
		data, err := transport.Receive(cn.ctx)
		if err != nil {
			ev := evTransportError
			if isRemoteClose(err) || cn.ctx.Err() != nil {
				ev = evRemoteClosed
			}
			c.lifecycle(cn, ev, err)
			return
		}
		c.handlePayload(cn, data)
	}
}

// writeLoop transmits queued frames in order until the connection ends.
func (c *Client) writeLoop(cn *conn, transport Transport) {
	for {
		select {
		case <-cn.ctx.Done():
			return
		case frame := <-cn.outbox:
			if c.cfg.onSend != nil {
				c.cfg.onSend(frame)
			}
			if c.cfg.logger != nil {
				c.cfg.logger.Debug("sending frame",
					slog.Int("length", len(frame.Message)),
					slog.Bool("session", frame.SessionID != ""),
				)
			}
			if err := transport.Send(cn.ctx, frame); err != nil {
				c.lifecycle(cn, evTransportError, &SendError{Op: "write", Err: err})
				return
			}
		}
	}
}

// handlePayload decodes one inbound payload and applies it to the state.
func (c *Client) handlePayload(cn *conn, data []byte) {
	frame, err := DecodeFrame(data)
	if err != nil {
		if c.cfg.logger != nil {
			c.cfg.logger.Debug("dropping malformed frame",
				slog.Int("length", len(data)),
				slog.Any("error", err),
			)
		}
		return
	}

	if c.cfg.onReceive != nil {
		c.cfg.onReceive(frame)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != cn || c.status != StatusOpen {
		return
	}

	kind := c.cfg.kinds.Lookup(frame.Type)
	if c.cfg.logger != nil {
		c.cfg.logger.Debug("received frame",
			slog.String("type", frame.Type),
			slog.String("kind", kind.String()),
		)
	}

	switch kind {
	case FrameTyping:
		if c.typing {
			return
		}
		c.typing = true
	case FrameGreeting:
		c.log.append(frame.Entry(EntryIncomingAssistant, c.cfg.now()))
	case FrameResponse:
		c.typing = false
		c.log.append(frame.Entry(EntryIncomingAssistant, c.cfg.now()))
	case FrameError:
		c.typing = false
		c.log.append(frame.Entry(EntryIncomingError, c.cfg.now()))
	default:
		return
	}
	c.changedLocked()
}

func (c *Client) closeTransport(cn *conn, transport Transport) {
	if err := transport.Close(); err != nil && c.cfg.logger != nil {
		c.cfg.logger.Debug("transport close",
			slog.Uint64("conn", cn.id),
			slog.Any("error", err),
		)
	}
}

func (c *Client) snapshotLocked() Snapshot {
	return Snapshot{
		Status: c.status,
		Typing: c.typing,
		Log:    c.log.snapshot(),
	}
}

// changedLocked queues a snapshot for the change listener.
func (c *Client) changedLocked() {
	if c.notify != nil {
		c.notify.push(c.snapshotLocked())
	}
}
