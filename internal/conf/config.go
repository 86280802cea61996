// config.go: settings struct for the review backend and functions to load it.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/denrzv/audio-review-backend/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// Database backends
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// CategorySeed is a category created at migration time when missing.
type CategorySeed struct {
	Name     string `yaml:"name"`
	Shortcut string `yaml:"shortcut"`
}

// ReviewSettings controls lease allocation and result projection.
type ReviewSettings struct {
	LeaseMinutes   int    `yaml:"leaseminutes"`   // lease time-to-live in minutes
	ContentBaseURL string `yaml:"contentbaseurl"` // base URL used to build content references
	CandidateBatch int    `yaml:"candidatebatch"` // random candidates tried per acquire
	MaxPageSize    int    `yaml:"maxpagesize"`    // upper bound for history page size
	Unclassified   string `yaml:"unclassified"`   // name of the sentinel category
}

// LeaseTTL returns the configured lease duration.
func (r *ReviewSettings) LeaseTTL() time.Duration {
	return time.Duration(r.LeaseMinutes) * time.Minute
}

// Settings is the root configuration
type Settings struct {
	Debug bool // true to enable debug mode

	Review ReviewSettings

	Database struct {
		Type                 string // sqlite or mysql
		SlowQueryThresholdMs int    // queries slower than this are logged at warn, 0 disables

		SQLite struct {
			Path          string // path to sqlite database
			BusyTimeoutMs int    // how long to wait on a locked database
		}

		MySQL struct {
			Host            string // host for mysql database
			Port            string // port for mysql database
			Username        string // username for mysql database
			Password        string // password for mysql database
			Database        string // database name for mysql database
			LockWaitSeconds int    // innodb_lock_wait_timeout for row locks
			MaxOpenConns    int    // connection pool size
		}
	}

	Categories []CategorySeed // categories seeded by migrate

	Logging logger.LoggingConfig

	Sentry struct {
		Enabled     bool   // true to report errors to Sentry
		DSN         string // Sentry DSN
		Environment string // environment tag
	}
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables. An empty
// configFile searches the default locations and writes the embedded default
// config when nothing is found.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper registers defaults and environment bindings and reads the config file.
func initViper(configFile string) error {
	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		return err
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("fatal error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it back
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, getDefaultConfig(), 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Created default config file at:", configPath)
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig returns the embedded default configuration
func getDefaultConfig() []byte {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		// embedded at build time
		panic(fmt.Sprintf("embedded config.yaml missing: %v", err))
	}
	return data
}

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error resolving user config directory: %w", err)
	}
	return []string{
		filepath.Join(configDir, "audio-review"),
		".",
	}, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Redacted returns a copy of s with secrets masked, suitable for display.
func Redacted(s *Settings) Settings {
	c := *s
	if c.Database.MySQL.Password != "" {
		c.Database.MySQL.Password = "********"
	}
	if c.Sentry.DSN != "" {
		c.Sentry.DSN = "********"
	}
	c.Categories = append([]CategorySeed(nil), s.Categories...)
	return c
}

// MarshalYAML renders settings the way they appear in config.yaml.
func MarshalYAML(s *Settings) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings: %w", err)
	}
	return out, nil
}
