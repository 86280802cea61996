// Package category provides commands for managing classification categories
package category

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/internal/app"
	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
)

type categoryView struct {
	ID       uint   `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Shortcut string `json:"shortcut" yaml:"shortcut"`
}

func viewOf(c *entities.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Shortcut: c.Shortcut}
}

// Command creates the category command.
func Command(appCtx *app.Context) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage classification categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := appCtx.Review.Directory().All(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]categoryView, 0, len(all))
			for i := range all {
				views = append(views, viewOf(&all[i]))
			}
			return cliutil.Render(cmd.OutOrStdout(), format, views)
		},
	}

	add := &cobra.Command{
		Use:   "add <name> <shortcut>",
		Short: "Add a category with a single-character shortcut",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := appCtx.Review.Directory().Create(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return cliutil.Render(cmd.OutOrStdout(), format, viewOf(c))
		},
	}

	remove := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category no item or history record references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := appCtx.Review.Directory()
			c, err := d.ByName(ctx, args[0])
			if err != nil {
				return err
			}
			if err := d.Delete(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", c.Name)
			return nil
		},
	}

	for _, sub := range []*cobra.Command{list, add, remove} {
		cliutil.AddFormatFlag(sub, &format)
		cmd.AddCommand(sub)
	}
	return cmd
}
