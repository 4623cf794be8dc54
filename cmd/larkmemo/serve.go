package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flashlark/larkmemo/internal/api"
	"github.com/flashlark/larkmemo/internal/app"
	mcpserver "github.com/flashlark/larkmemo/internal/mcp"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				addr := a.Config.HTTP.Listen
				if listen != "" {
					addr = listen
				}
				srv := api.NewServer(a.Service, a.Logger, addr)

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				errCh := make(chan error, 1)
				go func() { errCh <- srv.Start() }()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}
				a.Logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Stop(shutdownCtx)
			})
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	return cmd
}

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, a *app.App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				a.Logger.Info("mcp server starting", slog.String("version", version))
				return mcpserver.NewServer(a.Service, version, a.Logger).Run(ctx)
			})
		},
	}
}
