package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/makers-tech/chatsocket"
	"github.com/makers-tech/chatsocket/internal/storefront"
)

func newChatCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive chat session",
		Long: `Open an interactive chat with the storefront assistant.

Lines are sent as messages. /clear empties the conversation here and on the
server, /quit leaves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().Bool("legacy", false, "only understand typing, response and error frames (CHATWIDGET_LEGACY_FRAMES)")
	cmd.Flags().Bool("reconnect", false, "redial with backoff after the connection drops (CHATWIDGET_RECONNECT)")
	cmd.Flags().BoolVar(&opts.newSession, "new-session", false, "request a session id from the API when none is configured")
	return cmd
}

func runChat(ctx context.Context, opts *options, in io.Reader, out io.Writer) error {
	logger, err := opts.logger()
	if err != nil {
		return err
	}
	api, err := storefront.New(opts.APIURL, nil)
	if err != nil {
		return err
	}

	sessionID := opts.SessionID
	if sessionID == "" && opts.newSession {
		sessionID = startSession(ctx, api, logger)
	}

	kinds := chatsocket.DefaultFrameKinds()
	if opts.LegacyFrames {
		kinds = chatsocket.LegacyFrameKinds()
	}

	done := make(chan struct{})
	defer close(done)

	w := &lockedWriter{w: out}
	snapshots := make(chan chatsocket.Snapshot, 64)
	statuses := make(chan chatsocket.Status, 8)
	forward := statusForwarder(statuses)

	client := chatsocket.New(ctx, opts.WebSocketURL,
		chatsocket.WithLogger(logger),
		chatsocket.WithSessionID(sessionID),
		chatsocket.WithFrameKinds(kinds),
		chatsocket.WithOnChange(func(s chatsocket.Snapshot) {
			select {
			case snapshots <- s:
			case <-done:
				return
			}
			if opts.Reconnect {
				forward(s.Status)
			}
		}),
	)
	defer client.Close()

	v := newView(w)
	v.render(client.Snapshot())
	go func() {
		for {
			select {
			case s := <-snapshots:
				v.render(s)
			case <-done:
				return
			}
		}
	}()

	if opts.Reconnect {
		go newReconnector(client, opts.WebSocketURL, logger).run(ctx, statuses)
	}

	session := &chatSession{
		chat:      client,
		history:   api,
		sessionID: sessionID,
		out:       w,
	}

	lines := make(chan string)
	var readErr error
	go func() {
		defer close(lines)
		readErr = scanLines(in, lines, done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return readErr
			}
			if session.handle(ctx, line) {
				return nil
			}
		}
	}
}

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// scanLines forwards input lines until in is exhausted or done closes.
func scanLines(in io.Reader, lines chan<- string, done <-chan struct{}) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// startSession asks the API for a session id and falls back to a random one.
func startSession(ctx context.Context, api *storefront.Client, logger *slog.Logger) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s, err := api.StartSession(ctx)
	if err != nil {
		id := uuid.New().String()
		logger.Warn("start session failed, using local id",
			slog.Any("error", err),
			slog.String("session_id", id),
		)
		return id
	}
	return s.ID
}

// statusForwarder returns a func that passes on only status changes,
// dropping them when nobody is listening. It must be called from a single
// goroutine.
func statusForwarder(statuses chan<- chatsocket.Status) func(chatsocket.Status) {
	seen := false
	var last chatsocket.Status
	return func(s chatsocket.Status) {
		if seen && s == last {
			return
		}
		seen, last = true, s
		select {
		case statuses <- s:
		default:
		}
	}
}

type chatter interface {
	Status() chatsocket.Status
	Send(text string)
	Clear()
}

type historyClearer interface {
	ClearSession(ctx context.Context, sessionID string) error
}

// chatSession turns input lines into client calls.
type chatSession struct {
	chat      chatter
	history   historyClearer
	sessionID string
	out       io.Writer
}

// handle processes one input line and reports whether the user asked to quit.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "/quit", "/exit":
		return true
	case "/clear":
		s.chat.Clear()
		if err := s.history.ClearSession(ctx, s.sessionID); err != nil {
			fmt.Fprintln(s.out, errorStyle.Render("could not clear server history: "+err.Error()))
		}
		return false
	}

	if s.chat.Status() != chatsocket.StatusOpen {
		fmt.Fprintln(s.out, mutedStyle.Render("not connected, message not sent"))
		return false
	}
	s.chat.Send(line)
	return false
}

// lockedWriter serializes writes from the renderer and the input loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
