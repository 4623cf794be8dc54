package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flashlark/larkmemo/internal/app"
	"github.com/flashlark/larkmemo/internal/biz/usecase"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change locally stored settings",
	}
	fields := strings.Join(usecase.SettingsFields, ", ")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				s, err := a.Service.Usecases().Settings.Effective(ctx)
				if err != nil {
					return err
				}
				s = s.Redacted()
				return opts.emit(cmd.OutOrStdout(), s, func() {
					w := cmd.OutOrStdout()
					fmt.Fprintf(w, "domain            %s\n", s.Domain)
					fmt.Fprintf(w, "app_id            %s\n", s.AppID)
					fmt.Fprintf(w, "app_secret        %s\n", s.AppSecret)
					fmt.Fprintf(w, "receive_id        %s\n", s.ReceiveID)
					fmt.Fprintf(w, "receive_id_type   %s\n", s.ReceiveIDType)
					fmt.Fprintf(w, "prefix_timestamp  %t\n", s.PrefixTimestamp)
				})
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Store a local value that wins over configuration",
		Long:  "Store a local value that wins over configuration. Fields: " + fields,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				if err := a.Service.Usecases().Settings.Set(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Saved", args[0])
				return nil
			})
		},
	}

	unset := &cobra.Command{
		Use:   "unset <field>",
		Short: "Drop a local value so configuration applies again",
		Long:  "Drop a local value so configuration applies again. Fields: " + fields,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				if err := a.Service.Usecases().Settings.Unset(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed", args[0])
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report whether sending is fully configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				st, err := a.Service.Usecases().Settings.Status(ctx)
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), st, func() {
					if st.Complete {
						fmt.Fprintln(cmd.OutOrStdout(), "Setup complete")
						return
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Missing:", strings.Join(st.MissingFields, ", "))
				})
			})
		},
	}

	cmd.AddCommand(show, set, unset, status)
	return cmd
}
