// Package classify provides the classify command
package classify

import (
	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/internal/app"
	"github.com/denrzv/audio-review-backend/internal/review"
)

// Command creates the classify command.
func Command(appCtx *app.Context) *cobra.Command {
	var (
		reviewer      string
		expectVersion int64
		format        string
	)

	cmd := &cobra.Command{
		Use:   "classify <item-id> <category>",
		Short: "Commit a classification for an item",
		Long: `Classify moves an item to the named category, releases its lease and
appends a history record.

Without --expect-version the commit does not check who holds the lease, so
a later commit replaces an earlier one and both stay in the history. Pass
the version printed by acquire as --expect-version to have the commit
rejected when the item changed after it was acquired.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			itemID, err := cliutil.ParseID("item", args[0])
			if err != nil {
				return err
			}
			reviewerID, err := cliutil.ResolveReviewer(ctx, appCtx, reviewer)
			if err != nil {
				return err
			}

			var opts []review.CommitOption
			if expectVersion >= 0 {
				opts = append(opts, review.WithExpectedVersion(uint(expectVersion)))
			}

			item, err := appCtx.Review.Commit(ctx, itemID, reviewerID, args[1], opts...)
			if err != nil {
				return err
			}
			return cliutil.Render(cmd.OutOrStdout(), format, item)
		},
	}

	cmd.Flags().StringVarP(&reviewer, "reviewer", "r", "", "Reviewer username or id")
	cmd.Flags().Int64Var(&expectVersion, "expect-version", -1, "Reject the commit unless the item has this version")
	cliutil.AddFormatFlag(cmd, &format)
	return cmd
}
