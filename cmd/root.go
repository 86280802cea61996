// Package cmd builds the command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denrzv/audio-review-backend/cmd/acquire"
	"github.com/denrzv/audio-review-backend/cmd/category"
	"github.com/denrzv/audio-review-backend/cmd/classify"
	"github.com/denrzv/audio-review-backend/cmd/cliutil"
	"github.com/denrzv/audio-review-backend/cmd/configcmd"
	"github.com/denrzv/audio-review-backend/cmd/history"
	"github.com/denrzv/audio-review-backend/cmd/migrate"
	"github.com/denrzv/audio-review-backend/cmd/register"
	"github.com/denrzv/audio-review-backend/cmd/reviewer"
	"github.com/denrzv/audio-review-backend/cmd/version"
	"github.com/denrzv/audio-review-backend/internal/app"
	"github.com/denrzv/audio-review-backend/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(appCtx *app.Context) *cobra.Command {
	var (
		configFile   string
		printMetrics bool
	)

	rootCmd := &cobra.Command{
		Use:          "audio-review",
		Short:        "Audio review backend CLI",
		SilenceUsage: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, &configFile, &printMetrics); err != nil {
		panic(err) // flag names are static
	}

	rootCmd.AddCommand(
		migrate.Command(appCtx),
		reviewer.Command(appCtx),
		category.Command(appCtx),
		register.Command(appCtx),
		acquire.Command(appCtx),
		classify.Command(appCtx),
		history.Command(appCtx),
		configcmd.Command(appCtx),
		version.Command(appCtx),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		mode := cmd.Annotations[cliutil.SetupAnnotation]
		if mode == cliutil.SetupNone {
			return nil
		}

		settings, err := conf.Load(configFile)
		if err != nil {
			return err
		}
		if mode == cliutil.SetupConfig {
			appCtx.Settings = settings
			return nil
		}
		return appCtx.Setup(cmd.Context(), settings)
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if printMetrics {
			if err := appCtx.WriteMetrics(cmd.ErrOrStderr()); err != nil {
				return err
			}
		}
		return appCtx.Close()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string, printMetrics *bool) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(configFile, "config", "c", "", "Path to config.yaml (default: search standard locations)")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("database", "", "Database backend: sqlite or mysql")
	flags.BoolVar(printMetrics, "print-metrics", false, "Print collected metrics to stderr on exit")

	if err := viper.BindPFlag("debug", flags.Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := viper.BindPFlag("database.type", flags.Lookup("database")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
