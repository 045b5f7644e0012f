package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/makers-tech/chatsocket/internal/storefront"
)

func newHistoryCommand(opts *options) *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "Manage server-side chat history",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete chat history on the server",
		Long: `Delete chat history kept by the backend. With a session id only that
session is removed, otherwise the whole history is cleared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := storefront.New(opts.APIURL, nil)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if err := api.ClearSession(ctx, opts.SessionID); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}

	history.AddCommand(clearCmd)
	return history
}
