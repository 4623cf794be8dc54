package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flashlark/larkmemo/internal/app"
	"github.com/flashlark/larkmemo/internal/conf"
)

type rootOptions struct {
	configPath string
	jsonOut    bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "larkmemo",
		Short:         "Send memos to Lark from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default configs/larkmemo.yaml, then ~/.larkmemo/config.yaml)")
	flags.BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "write logs to stderr")

	cmd.AddCommand(
		newSendCmd(opts),
		newChatsCmd(opts),
		newHistoryCmd(opts),
		newCustomChatCmd(opts),
		newTemplateCmd(opts),
		newSettingsCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
	)
	return cmd
}

// run opens the app, calls fn and closes the app again
func (o *rootOptions) run(cmd *cobra.Command, logs bool, fn func(ctx context.Context, a *app.App) error) error {
	a, err := o.open(logs || o.verbose)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(cmd.Context(), a)
}

func (o *rootOptions) open(logs bool) (*app.App, error) {
	if o.configPath != "" {
		if err := os.Setenv("LARKMEMO_CONFIG", o.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := conf.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	opts := app.Options{}
	if logs {
		opts.LogOutput = os.Stderr
	}
	return app.New(cfg, opts)
}

// emit prints v as JSON when --json is set, otherwise calls human
func (o *rootOptions) emit(w io.Writer, v any, human func()) error {
	if !o.jsonOut {
		human()
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
