// Package version provides the version command
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/internal/app"
)

// Command creates the version command.
func Command(appCtx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{cliutil.SetupAnnotation: cliutil.SetupNone},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "audio-review %s (built %s, %s)\n",
				appCtx.Build.Version(), appCtx.Build.BuildDate(), runtime.Version())
		},
	}
}
