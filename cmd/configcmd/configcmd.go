// Package configcmd provides the config command
package configcmd

import (
	"github.com/spf13/cobra"

	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/internal/app"
	"github.com/denrzv/audio-review-backend/internal/conf"
)

// Command creates the config command.
func Command(appCtx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	show := &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration with secrets masked",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{cliutil.SetupAnnotation: cliutil.SetupConfig},
		RunE: func(cmd *cobra.Command, args []string) error {
			redacted := conf.Redacted(appCtx.Settings)
			out, err := conf.MarshalYAML(&redacted)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.AddCommand(show)
	return cmd
}
