// Package reviewer provides commands for managing reviewers
package reviewer

import (
	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/internal/app"
)

type reviewerView struct {
	ID       uint   `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

// Command creates the reviewer command.
func Command(appCtx *app.Context) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "reviewer",
		Short: "Manage reviewers",
	}

	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Add a reviewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := appCtx.Review.AddReviewer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cliutil.Render(cmd.OutOrStdout(), format, reviewerView{r.ID, r.Username})
		},
	}

	show := &cobra.Command{
		Use:   "show <username>",
		Short: "Show a reviewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := appCtx.Review.ReviewerByUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cliutil.Render(cmd.OutOrStdout(), format, reviewerView{r.ID, r.Username})
		},
	}

	for _, sub := range []*cobra.Command{add, show} {
		cliutil.AddFormatFlag(sub, &format)
		cmd.AddCommand(sub)
	}
	return cmd
}
