// env.go - environment variable bindings and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "AUDIOREVIEW_DEBUG", validateEnvBool},

		// Review
		{"review.leaseminutes", "AUDIOREVIEW_LEASE_MINUTES", validateEnvPositiveInt},
		{"review.contentbaseurl", "AUDIOREVIEW_CONTENT_BASE_URL", validateEnvURL},
		{"review.candidatebatch", "AUDIOREVIEW_CANDIDATE_BATCH", validateEnvPositiveInt},
		{"review.maxpagesize", "AUDIOREVIEW_MAX_PAGE_SIZE", validateEnvPositiveInt},

		// Database
		{"database.type", "AUDIOREVIEW_DB_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "AUDIOREVIEW_SQLITE_PATH", nil},
		{"database.mysql.host", "AUDIOREVIEW_MYSQL_HOST", nil},
		{"database.mysql.port", "AUDIOREVIEW_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "AUDIOREVIEW_MYSQL_USERNAME", nil},
		{"database.mysql.password", "AUDIOREVIEW_MYSQL_PASSWORD", nil},
		{"database.mysql.database", "AUDIOREVIEW_MYSQL_DATABASE", nil},

		// Telemetry
		{"sentry.enabled", "AUDIOREVIEW_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "AUDIOREVIEW_SENTRY_DSN", nil},
	}
}

// bindEnvVars binds environment variables and validates any that are set
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0", value)
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero, got %d", n)
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got '%s'", u.Scheme)
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch value {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	default:
		return fmt.Errorf("must be %q or %q", DatabaseSQLite, DatabaseMySQL)
	}
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
