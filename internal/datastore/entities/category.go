package entities

import (
	"strings"
	"time"
)

// Category is a classification bucket. Names are unique ignoring case,
// which is enforced through the normalized NameKey column.
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;not null"`
	NameKey   string    `gorm:"size:100;not null;uniqueIndex:idx_categories_name_key"`
	Shortcut  string    `gorm:"size:4;not null;uniqueIndex:idx_categories_shortcut"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (Category) TableName() string {
	return "categories"
}

// NormalizeCategoryName returns the lookup key for a category name.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
