// Package entities defines the GORM models for the review schema.
//
// Timestamps that take part in queries (lease stamps, classification times,
// upload times) are stored as Unix milliseconds so that comparisons behave
// the same on SQLite and MySQL. Bookkeeping timestamps use time.Time.
package entities
