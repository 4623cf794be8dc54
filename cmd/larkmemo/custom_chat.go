package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flashlark/larkmemo/internal/app"
	"github.com/flashlark/larkmemo/internal/biz/domain"
)

type customChatFlags struct {
	name        string
	kind        string
	chatID      string
	webhookURL  string
	description string
}

func (f *customChatFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "display name")
	fl.StringVar(&f.kind, "type", string(domain.CustomChatGroup), "group, personal or webhook")
	fl.StringVar(&f.chatID, "chat-id", "", "chat id for group and personal chats")
	fl.StringVar(&f.webhookURL, "webhook", "", "incoming webhook URL")
	fl.StringVar(&f.description, "description", "", "free-form description")
}

// patch returns only the fields set on the command line
func (f *customChatFlags) patch(cmd *cobra.Command) domain.CustomChatPatch {
	var p domain.CustomChatPatch
	fl := cmd.Flags()
	if fl.Changed("name") {
		p.Name = &f.name
	}
	if fl.Changed("type") {
		t := domain.CustomChatType(f.kind)
		p.Type = &t
	}
	if fl.Changed("chat-id") {
		p.ChatID = &f.chatID
	}
	if fl.Changed("webhook") {
		p.WebhookURL = &f.webhookURL
	}
	if fl.Changed("description") {
		p.Description = &f.description
	}
	return p
}

func newCustomChatCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "custom-chat",
		Aliases: []string{"cc"},
		Short:   "Manage custom chats and webhooks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List custom chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				chats, err := a.Service.Usecases().CustomChat.List(ctx)
				if err != nil {
					return err
				}
				if chats == nil {
					chats = []domain.CustomChat{}
				}
				return opts.emit(cmd.OutOrStdout(), chats, func() {
					for _, c := range chats {
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s  %s  %s\n", c.ID, c.Type, c.Name, c.Target())
					}
				})
			})
		},
	}

	var addFlags customChatFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a custom chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				created, err := a.Service.Usecases().CustomChat.Create(ctx, domain.CustomChat{
					Name:        addFlags.name,
					Type:        domain.CustomChatType(addFlags.kind),
					ChatID:      addFlags.chatID,
					WebhookURL:  addFlags.webhookURL,
					Description: addFlags.description,
				})
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), created, func() {
					fmt.Fprintln(cmd.OutOrStdout(), "Created", created.ID)
				})
			})
		},
	}
	addFlags.register(add)

	var updateFlags customChatFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a custom chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				updated, err := a.Service.Usecases().CustomChat.Update(ctx, args[0], updateFlags.patch(cmd))
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), updated, func() {
					fmt.Fprintln(cmd.OutOrStdout(), "Updated", updated.ID)
				})
			})
		},
	}
	updateFlags.register(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				ok, err := a.Service.Usecases().CustomChat.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("custom chat %s: %w", args[0], domain.ErrNotFound)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all custom chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				if err := a.Service.Usecases().CustomChat.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Custom chats cleared")
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, update, del, clearCmd)
	return cmd
}
