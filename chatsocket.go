// Package chatsocket provides a Go client for the storefront assistant's
// real-time chat socket.
//
// A [Client] holds a single WebSocket connection to the chat backend,
// decodes the typing, greeting, response and error frames it multiplexes,
// and keeps an append-only conversation log that the host can render at any
// time regardless of connection state.
//
// # Thread Safety
//
// [Client] is safe for concurrent use by multiple goroutines. Socket events
// and calls to [Client.Send] and [Client.Clear] are applied one at a time.
//
// # Basic Usage
//
//	ctx := context.Background()
//
//	client := chatsocket.New(ctx, "ws://localhost:8000/ws",
//	    chatsocket.WithSessionID(sessionID),
//	    chatsocket.WithOnChange(func(s chatsocket.Snapshot) {
//	        render(s.Status, s.Typing, s.Log)
//	    }),
//	)
//	defer client.Close()
//
//	// Later, on user input:
//	if client.Status() == chatsocket.StatusOpen {
//	    client.Send("¿Qué laptops tienen disponibles?")
//	}
//
// Connection failures never surface as errors from Send; they move the
// status to [StatusClosed]. Reconnecting is left to the host, see
// [Client.Redial].
//
// # Frame Kinds
//
// Which inbound type values are understood is configurable with
// [WithFrameKinds]. [DefaultFrameKinds] folds welcome and info frames into
// assistant messages; [LegacyFrameKinds] ignores them.
//
// # Observability
//
// Use [WithLogger], [WithOnSend], and [WithOnReceive] to add logging and
// monitoring to the client:
//
//	client := chatsocket.New(ctx, url,
//	    chatsocket.WithLogger(slog.Default()),
//	    chatsocket.WithOnSend(func(f *chatsocket.OutboundFrame) {
//	        metrics.MessagesSent.Inc()
//	    }),
//	)
package chatsocket
