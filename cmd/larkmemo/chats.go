package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flashlark/larkmemo/internal/app"
)

func newChatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List the chats a memo can be sent to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				result, err := a.Service.ListChats(ctx)
				if err != nil {
					return err
				}
				for _, w := range result.Warnings {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
				}
				return opts.emit(cmd.OutOrStdout(), result.Chats, func() {
					for _, c := range result.Chats {
						mark := " "
						if c.IsDefault {
							mark = "*"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s %-8s %-40s %s\n", mark, c.Kind, c.ChatID, c.Name)
					}
				})
			})
		},
	}
}
