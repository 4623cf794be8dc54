package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flashlark/larkmemo/internal/app"
	"github.com/flashlark/larkmemo/internal/biz/domain"
)

func newTemplateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage memo templates",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List preset and user templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				uc := a.Service.Usecases().Template
				templates, err := uc.List(ctx)
				if err != nil {
					return err
				}
				selected, err := uc.Selected(ctx)
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), templates, func() {
					for _, t := range templates {
						mark := " "
						if selected != nil && selected.ID == t.ID {
							mark = "*"
						}
						kind := "user"
						if t.IsPreset {
							kind = "preset"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %-7s %-12s %s\n", mark, t.ID, kind, t.Category, t.Name)
					}
				})
			})
		},
	}

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a rendered template (the selected one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				uc := a.Service.Usecases().Template
				var id string
				if len(args) == 1 {
					id = args[0]
				} else {
					selected, err := uc.Selected(ctx)
					if err != nil {
						return err
					}
					if selected == nil {
						return fmt.Errorf("no template selected: %w", domain.ErrNotFound)
					}
					id = selected.ID
				}
				body, err := uc.Render(ctx, id, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), body)
				return nil
			})
		},
	}

	var name, content, category string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a user template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				created, err := a.Service.Usecases().Template.Create(ctx, domain.Template{
					Name: name, Content: content, Category: category,
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
	add.Flags().StringVar(&name, "name", "", "template name")
	add.Flags().StringVar(&content, "content", "", "template body; {{date}}, {{time}} and {{datetime}} are filled in")
	add.Flags().StringVar(&category, "category", "", "category label")

	var upName, upContent, upCategory string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a user template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p domain.TemplatePatch
			if cmd.Flags().Changed("name") {
				p.Name = &upName
			}
			if cmd.Flags().Changed("content") {
				p.Content = &upContent
			}
			if cmd.Flags().Changed("category") {
				p.Category = &upCategory
			}
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				updated, err := a.Service.Usecases().Template.Update(ctx, args[0], p)
				if err != nil {
					return err
				}
				return opts.emit(cmd.OutOrStdout(), updated, func() {
					fmt.Fprintln(cmd.OutOrStdout(), "Updated", updated.ID)
				})
			})
		},
	}
	update.Flags().StringVar(&upName, "name", "", "template name")
	update.Flags().StringVar(&upContent, "content", "", "template body")
	update.Flags().StringVar(&upCategory, "category", "", "category label")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				ok, err := a.Service.Usecases().Template.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("template %s: %w", args[0], domain.ErrNotFound)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
				return nil
			})
		},
	}

	var clearSelection bool
	sel := &cobra.Command{
		Use:   "select [id]",
		Short: "Select the template used by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !clearSelection {
				return fmt.Errorf("give a template id or --clear")
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return opts.run(cmd, false, func(ctx context.Context, a *app.App) error {
				if err := a.Service.Usecases().Template.Select(ctx, id); err != nil {
					return err
				}
				if id == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Selected", id)
				}
				return nil
			})
		},
	}
	sel.Flags().BoolVar(&clearSelection, "clear", false, "clear the selection")

	cmd.AddCommand(list, show, add, update, del, sel)
	return cmd
}
