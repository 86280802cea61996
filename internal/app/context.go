// Package app holds the application state shared by CLI commands.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"

	"github.com/denrzv/audio-review-backend/internal/buildinfo"
	"github.com/denrzv/audio-review-backend/internal/conf"
	"github.com/denrzv/audio-review-backend/internal/datastore"
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/logger"
	"github.com/denrzv/audio-review-backend/internal/observability"
	"github.com/denrzv/audio-review-backend/internal/review"
	"github.com/denrzv/audio-review-backend/internal/telemetry"
)

// Context holds the overall application state. Commands receive it before
// flags are parsed; Setup fills it in once configuration is known.
type Context struct {
	Build    *buildinfo.Context
	Settings *conf.Settings
	Log      logger.Logger
	Store    datastore.Manager
	Metrics  *observability.Metrics
	Review   *review.Service

	central *logger.CentralLogger
	flush   func()
}

// NewContext creates an empty application context.
func NewContext(build *buildinfo.Context) *Context {
	return &Context{Build: build}
}

// Setup loads settings and brings up logging, telemetry, metrics, the
// datastore and the review service. The schema is migrated and seeded on
// every start.
func (c *Context) Setup(ctx context.Context, settings *conf.Settings) error {
	c.Settings = settings
	if settings.Debug {
		settings.Logging.DefaultLevel = "debug"
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = "debug"
		}
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)
	c.central = central
	c.Log = central.Module("app")

	flush, err := telemetry.Init(settings, telemetry.Options{
		Version: c.Build.Version(),
		Logger:  central.Module("telemetry"),
	})
	if err != nil {
		// telemetry is optional; keep going without it
		c.Log.Warn("sentry initialization failed", logger.Error(err))
		flush = func() {}
	}
	c.flush = flush

	c.Metrics, err = observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	store, err := datastore.Open(settings, central.Module("datastore"))
	if err != nil {
		return err
	}
	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return err
	}
	c.Store = store

	c.Review = review.New(store.DB(), review.ConfigFromSettings(settings),
		review.WithLogger(central.Module("review")),
		review.WithMetrics(c.Metrics.Review),
		review.WithTransactor(repository.NewTransactor(store.DB(), c.Metrics.Datastore)))

	c.Log.Debug("application ready",
		logger.String("version", c.Build.Version()),
		logger.String("database", settings.Database.Type))
	return nil
}

// Close releases everything Setup acquired. It is safe to call on a
// context that was never set up.
func (c *Context) Close() error {
	var errs []error
	if c.Store != nil {
		if c.Metrics != nil {
			if err := datastore.ReportPoolStats(c.Store, c.Metrics.Datastore); err != nil {
				errs = append(errs, err)
			}
		}
		if err := c.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		c.Store = nil
	}
	if c.flush != nil {
		c.flush()
		c.flush = nil
	}
	if c.central != nil {
		if err := c.central.Close(); err != nil {
			errs = append(errs, err)
		}
		c.central = nil
	}
	return errors.Join(errs...)
}

// WriteMetrics renders every gathered metric family in the Prometheus
// text format.
func (c *Context) WriteMetrics(w io.Writer) error {
	if c.Metrics == nil {
		return nil
	}
	families, err := c.Metrics.Registry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
