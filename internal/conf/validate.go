// conf/validate.go

package conf

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateReviewSettings(&settings.Review); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateDatabaseSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateCategorySeeds(settings.Categories, settings.Review.Unclassified); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		ve.Errors = append(ve.Errors, "sentry is enabled but no DSN is configured")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateReviewSettings(r *ReviewSettings) error {
	var errs []string

	if r.LeaseMinutes <= 0 {
		errs = append(errs, fmt.Sprintf("review.leaseminutes must be positive, got %d", r.LeaseMinutes))
	}
	if r.CandidateBatch <= 0 {
		errs = append(errs, fmt.Sprintf("review.candidatebatch must be positive, got %d", r.CandidateBatch))
	}
	if r.MaxPageSize <= 0 {
		errs = append(errs, fmt.Sprintf("review.maxpagesize must be positive, got %d", r.MaxPageSize))
	}
	if strings.TrimSpace(r.Unclassified) == "" {
		errs = append(errs, "review.unclassified must not be empty")
	}
	if r.ContentBaseURL != "" {
		if err := validateEnvURL(r.ContentBaseURL); err != nil {
			errs = append(errs, fmt.Sprintf("review.contentbaseurl: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("review settings errors: %v", errs)
	}
	return nil
}

func validateDatabaseSettings(s *Settings) error {
	switch s.Database.Type {
	case DatabaseSQLite:
		if s.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path must be set")
		}
	case DatabaseMySQL:
		m := s.Database.MySQL
		var missing []string
		for name, v := range map[string]string{"host": m.Host, "port": m.Port, "username": m.Username, "database": m.Database} {
			if v == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("database.mysql is missing %v", missing)
		}
		if m.LockWaitSeconds <= 0 {
			return fmt.Errorf("database.mysql.lockwaitseconds must be positive, got %d", m.LockWaitSeconds)
		}
	default:
		return fmt.Errorf("database.type must be %q or %q, got %q", DatabaseSQLite, DatabaseMySQL, s.Database.Type)
	}
	return nil
}

func validateCategorySeeds(seeds []CategorySeed, unclassified string) error {
	var errs []string
	names := make(map[string]bool, len(seeds))
	shortcuts := make(map[string]bool, len(seeds))

	for _, seed := range seeds {
		name := strings.ToLower(strings.TrimSpace(seed.Name))
		switch {
		case name == "":
			errs = append(errs, "category with empty name")
			continue
		case strings.EqualFold(name, unclassified):
			errs = append(errs, fmt.Sprintf("category %q is reserved", seed.Name))
		case names[name]:
			errs = append(errs, fmt.Sprintf("duplicate category name %q", seed.Name))
		}
		names[name] = true

		if utf8.RuneCountInString(seed.Shortcut) != 1 {
			errs = append(errs, fmt.Sprintf("category %q shortcut must be a single character", seed.Name))
		} else if shortcuts[strings.ToLower(seed.Shortcut)] {
			errs = append(errs, fmt.Sprintf("duplicate shortcut %q", seed.Shortcut))
		}
		shortcuts[strings.ToLower(seed.Shortcut)] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("category seed errors: %v", errs)
	}
	return nil
}
