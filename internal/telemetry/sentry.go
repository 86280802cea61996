// Package telemetry provides privacy-compliant error tracking
package telemetry

import (
	"fmt"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/denrzv/audio-review-backend/internal/conf"
	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/logger"
)

const flushTimeout = 2 * time.Second

// Options adjusts Sentry initialization.
type Options struct {
	Version   string
	Logger    logger.Logger
	Transport sentry.Transport // nil uses the SDK's HTTP transport
}

// Init initializes Sentry when settings enable it and registers it as the
// reporter for enhanced errors. The returned flush function waits for
// buffered events; it is a no-op when Sentry is disabled.
func Init(settings *conf.Settings, opts Options) (flush func(), err error) {
	log := opts.Logger
	if log == nil {
		log = logger.Global().Module("telemetry")
	}

	if !settings.Sentry.Enabled {
		log.Debug("sentry telemetry is disabled")
		errors.SetTelemetryReporter(nil)
		return func() {}, nil
	}

	environment := settings.Sentry.Environment
	if environment == "" {
		environment = "production"
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      environment,
		ServerName:       "", // keep the hostname out of events
		Release:          "audio-review@" + opts.Version,
		Transport:        opts.Transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sentry initialization failed: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetContext("application", map[string]any{
			"name":    "audio-review",
			"version": opts.Version,
		})
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	log.Info("sentry telemetry initialized",
		logger.String("environment", environment),
		logger.String("version", opts.Version))

	return func() { sentry.Flush(flushTimeout) }, nil
}

// applyPrivacyFilters strips identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	for _, key := range []string{"device", "os", "runtime"} {
		delete(event.Contexts, key)
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	delete(event.Tags, "server_name")
	delete(event.Tags, "hostname")

	return event
}
