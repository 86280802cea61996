// Package migrate provides the migrate command
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/internal/app"
)

// Command creates the migrate command. The schema is brought up to date by
// the shared setup; this command reports the result.
func Command(appCtx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := appCtx.Review.Directory().All(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schema ready on %s (%s)\n", appCtx.Settings.Database.Type, appCtx.Store.Path())
			for _, c := range all {
				fmt.Fprintf(out, "  [%s] %s\n", c.Shortcut, c.Name)
			}
			return nil
		},
	}
}
