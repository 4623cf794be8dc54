package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flashlark/larkmemo/internal/app"
	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/service"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var (
		to        string
		files     []string
		template  string
		waitReply bool
	)
	cmd := &cobra.Command{
		Use:   "send [text...]",
		Short: "Send a memo",
		Long: `Send a memo to the default recipient, a chat id or a custom chat.
Use "-" as the text to read it from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := memoText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				if template != "" {
					body, err := a.Service.Usecases().Template.Render(ctx, template, time.Now())
					if err != nil {
						return err
					}
					text = joinNonEmpty(body, text)
				}

				req := domain.MemoRequest{Text: text, Destination: to}
				for _, p := range files {
					f, err := domain.LoadAttachment(p)
					if err != nil {
						return err
					}
					req.Files = append(req.Files, *f)
				}

				out, err := a.Service.Send(ctx, req, waitReply)
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), out, func() { printSendOutcome(cmd.OutOrStdout(), out) })
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&to, "to", "t", "", "chat id or custom chat id (default recipient when empty)")
	f.StringSliceVarP(&files, "file", "f", nil, "file to attach (repeatable)")
	f.StringVar(&template, "template", "", "template id to prepend")
	f.BoolVarP(&waitReply, "wait-reply", "w", false, "wait briefly for the bot to reply")
	return cmd
}

func memoText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(raw), "\n"), nil
	}
	return strings.Join(args, " "), nil
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func printSendOutcome(w io.Writer, out *service.SendOutcome) {
	name := out.DestinationName
	if name == "" {
		name = out.Destination
	}
	switch {
	case out.Webhook:
		fmt.Fprintf(w, "Sent to %s via webhook\n", name)
	case out.Text != nil:
		fmt.Fprintf(w, "Sent to %s (%s)\n", name, out.Text.MessageID)
	default:
		fmt.Fprintf(w, "Sent to %s\n", name)
	}
	for _, f := range out.Files {
		switch {
		case f.Skipped:
			fmt.Fprintf(w, "  %s: skipped\n", f.Name)
		case f.Error != "":
			fmt.Fprintf(w, "  %s: failed: %s\n", f.Name, f.Error)
		default:
			fmt.Fprintf(w, "  %s: ok\n", f.Name)
		}
	}
	if out.Reply != nil {
		fmt.Fprintf(w, "Reply: %s\n", out.Reply.Preview)
	}
}
