// Package register provides the register command
package register

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/internal/app"
	"github.com/denrzv/audio-review-backend/internal/review"
)

// Command creates the register command.
func Command(appCtx *app.Context) *cobra.Command {
	var (
		uploader   string
		contentRef string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "register <filename>...",
		Short: "Register uploaded recordings for review",
		Long: `Register records one item per file name. The initial category is inferred
from the file name and every item starts unclassified.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if contentRef != "" && len(args) > 1 {
				return fmt.Errorf("--content-ref can only be used with a single file")
			}
			ctx := cmd.Context()
			uploaderID, err := cliutil.ResolveReviewer(ctx, appCtx, uploader)
			if err != nil {
				return err
			}

			items := make([]*review.ItemView, 0, len(args))
			for _, name := range args {
				item, err := appCtx.Review.Register(ctx, uploaderID, name, contentRef)
				if err != nil {
					return err
				}
				items = append(items, item)
			}
			return cliutil.Render(cmd.OutOrStdout(), format, items)
		},
	}

	cmd.Flags().StringVarP(&uploader, "uploader", "u", "", "Uploader username or id")
	cmd.Flags().StringVar(&contentRef, "content-ref", "", "Content store reference, defaults to the file name")
	cliutil.AddFormatFlag(cmd, &format)
	return cmd
}
