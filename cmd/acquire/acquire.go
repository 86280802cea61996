// Package acquire provides the acquire command
package acquire

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/internal/app"
	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/review"
)

// Command creates the acquire command.
func Command(appCtx *app.Context) *cobra.Command {
	var (
		reviewer string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Lease the next unclassified item to a reviewer",
		Long: `Acquire returns the item the reviewer already holds, or leases a random
unclassified item that is free or whose lease has expired.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reviewerID, err := cliutil.ResolveReviewer(ctx, appCtx, reviewer)
			if err != nil {
				return err
			}

			item, err := appCtx.Review.Acquire(ctx, reviewerID)
			if errors.Is(err, review.ErrNoEligibleItem) {
				fmt.Fprintln(cmd.OutOrStdout(), "No eligible item")
				return nil
			}
			if err != nil {
				return err
			}
			return cliutil.Render(cmd.OutOrStdout(), format, item)
		},
	}

	cmd.Flags().StringVarP(&reviewer, "reviewer", "r", "", "Reviewer username or id")
	cliutil.AddFormatFlag(cmd, &format)
	return cmd
}
