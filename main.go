package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/denrzv/audio-review-backend/cmd"
	"github.com/denrzv/audio-review-backend/internal/app"
	"github.com/denrzv/audio-review-backend/internal/buildinfo"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = "dev"
	buildDate = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	appCtx := app.NewContext(buildinfo.NewContext(version, buildDate))
	err := cmd.RootCommand(appCtx).ExecuteContext(ctx)

	// PersistentPostRun is skipped when a command fails
	if closeErr := appCtx.Close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "shutdown:", closeErr)
	}
	stop()

	if err != nil {
		os.Exit(1)
	}
}
