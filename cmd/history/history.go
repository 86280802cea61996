// Package history provides the history command
package history

import (
	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/internal/app"
	"github.com/denrzv/audio-review-backend/internal/review"
)

// pageView adds the paging hint to a history page.
type pageView struct {
	review.HistoryPage `json:",inline" yaml:",inline"`
	HasNext            bool `json:"hasNext" yaml:"hasnext"`
}

// Command creates the history command.
func Command(appCtx *app.Context) *cobra.Command {
	var (
		reviewer string
		page     int
		size     int
		format   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a reviewer's classification history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reviewerID, err := cliutil.ResolveReviewer(ctx, appCtx, reviewer)
			if err != nil {
				return err
			}
			result, err := appCtx.Review.HistoryPage(ctx, reviewerID, page, size)
			if err != nil {
				return err
			}
			return cliutil.Render(cmd.OutOrStdout(), format, pageView{HistoryPage: *result, HasNext: result.HasNext()})
		},
	}

	cmd.Flags().StringVarP(&reviewer, "reviewer", "r", "", "Reviewer username or id")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "Page number, starting at 0")
	cmd.Flags().IntVarP(&size, "size", "n", 20, "Records per page")
	cliutil.AddFormatFlag(cmd, &format)
	return cmd
}
