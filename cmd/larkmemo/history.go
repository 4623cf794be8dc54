package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/flashlark/larkmemo/internal/app"
	"github.com/flashlark/larkmemo/internal/biz/domain"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the send history",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent sends, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				entries, err := a.Service.Usecases().History.List(ctx)
				if err != nil {
					return err
				}
				return opts.printHistory(cmd.OutOrStdout(), head(entries, limit))
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show")

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search by content or destination name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				entries, err := a.Service.Usecases().History.Search(ctx, args[0])
				if err != nil {
					return err
				}
				return opts.printHistory(cmd.OutOrStdout(), entries)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				ok, err := a.Service.Usecases().History.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("history entry %s: %w", args[0], domain.ErrNotFound)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				if err := a.Service.Usecases().History.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			})
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show send statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				st, err := a.Service.Usecases().History.Stats(ctx)
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), st, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "total %d, successful %d, failed %d, last 7 days %d\n",
						st.Total, st.Successful, st.Failed, st.LastWeek)
				})
			})
		},
	}

	cmd.AddCommand(list, search, del, clearCmd, stats)
	return cmd
}

func (o *rootOptions) printHistory(w io.Writer, entries []domain.HistoryEntry) error {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return o.emit(w, entries, func() {
		for _, e := range entries {
			status := "ok"
			if !e.Success {
				status = "FAILED: " + e.Error
			}
			name := e.DestinationName
			if name == "" {
				name = e.Destination
			}
			fmt.Fprintf(w, "%s  %s  %s  %s  [%s]\n",
				e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"), name, domain.PreviewText(e.Content, 40), status)
		}
	})
}

func head[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
