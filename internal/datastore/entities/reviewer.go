package entities

import "time"

// Reviewer is a person who classifies items. Identity is issued elsewhere;
// this table only records who exists.
type Reviewer struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (Reviewer) TableName() string {
	return "reviewers"
}
