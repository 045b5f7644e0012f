// Command chatwidget is a terminal host for the storefront assistant chat.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/makers-tech/chatsocket/internal/config"
)

// options are resolved from the environment, then overridden by flags.
type options struct {
	config.Config
	newSession bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "chatwidget",
		Short:        "Chat with the storefront assistant from a terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadOptions(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.String("url", "", "chat websocket URL (CHATWIDGET_WS_URL)")
	flags.String("api", "", "storefront API base URL (CHATWIDGET_API_URL)")
	flags.String("session-id", "", "session id sent with every message (CHATWIDGET_SESSION_ID)")
	flags.String("log-level", "", "debug, info, warn or error (CHATWIDGET_LOG_LEVEL)")

	root.AddCommand(newChatCommand(opts), newHistoryCommand(opts))
	return root
}

// loadOptions fills opts from the environment and any flags that were set.
func loadOptions(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts.Config = cfg

	flags := cmd.Flags()
	overrides := map[string]*string{
		"url":        &opts.WebSocketURL,
		"api":        &opts.APIURL,
		"session-id": &opts.SessionID,
		"log-level":  &opts.LogLevel,
	}
	for name, dst := range overrides {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	if flags.Changed("legacy") {
		opts.LegacyFrames, _ = flags.GetBool("legacy")
	}
	if flags.Changed("reconnect") {
		opts.Reconnect, _ = flags.GetBool("reconnect")
	}
	return nil
}

func (o *options) logger() (*slog.Logger, error) {
	level, err := o.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
