// Package cliutil holds helpers shared by the CLI commands.
package cliutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/denrzv/audio-review-backend/internal/app"
)

// Output formats accepted by --format.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// AddFormatFlag registers --format on cmd.
func AddFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", FormatYAML, "Output format: yaml, json")
}

// Render writes v to w in the requested format.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// ResolveReviewer accepts a numeric reviewer id or a username.
func ResolveReviewer(ctx context.Context, appCtx *app.Context, ref string) (uint, error) {
	if ref == "" {
		return 0, fmt.Errorf("--reviewer is required")
	}
	if id, err := strconv.ParseUint(ref, 10, 0); err == nil {
		return uint(id), nil
	}
	r, err := appCtx.Review.ReviewerByUsername(ctx, ref)
	if err != nil {
		return 0, err
	}
	return r.ID, nil
}

// ParseID parses a positive numeric id argument.
func ParseID(kind, arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, arg)
	}
	return uint(id), nil
}

// SetupAnnotation tells the root command how much of the application a
// command needs. Commands without it get the full setup.
const SetupAnnotation = "setup"

// Values for SetupAnnotation.
const (
	SetupNone   = "none"   // nothing is loaded
	SetupConfig = "config" // settings only, no datastore
)
