package conf

import (
	"github.com/spf13/viper"
)

// Default values shared with the embedded config.yaml
const (
	DefaultLeaseMinutes   = 15
	DefaultCandidateBatch = 8
	DefaultMaxPageSize    = 100
	DefaultUnclassified   = "Unclassified"
)

// setDefaultConfig sets the default values for every configuration key
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("review.leaseminutes", DefaultLeaseMinutes)
	viper.SetDefault("review.contentbaseurl", "http://localhost:8080")
	viper.SetDefault("review.candidatebatch", DefaultCandidateBatch)
	viper.SetDefault("review.maxpagesize", DefaultMaxPageSize)
	viper.SetDefault("review.unclassified", DefaultUnclassified)

	viper.SetDefault("database.type", DatabaseSQLite)
	viper.SetDefault("database.slowquerythresholdms", 200)
	viper.SetDefault("database.sqlite.path", "audio-review.db")
	viper.SetDefault("database.sqlite.busytimeoutms", 5000)
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")
	viper.SetDefault("database.mysql.username", "")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.database", "audio_review")
	viper.SetDefault("database.mysql.lockwaitseconds", 5)
	viper.SetDefault("database.mysql.maxopenconns", 25)

	viper.SetDefault("categories", []map[string]any{
		{"name": "Voicemail", "shortcut": "v"},
		{"name": "Speech", "shortcut": "s"},
		{"name": "Music", "shortcut": "m"},
		{"name": "Silence", "shortcut": "n"},
		{"name": "Undefined", "shortcut": "u"},
	})

	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", "logs/review.log")
	viper.SetDefault("logging.file_output.level", "info")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.environment", "production")
}
