package entities

// Classification is an immutable history record written once per commit.
type Classification struct {
	ID                 uint  `gorm:"primaryKey"`
	ReviewerID         uint  `gorm:"not null;index:idx_classifications_reviewer_time,priority:1"`
	ItemID             uint  `gorm:"not null;index"`
	PreviousCategoryID uint  `gorm:"not null;index"`
	NewCategoryID      uint  `gorm:"not null;index"`
	ClassifiedAt       int64 `gorm:"not null;index:idx_classifications_reviewer_time,priority:2"` // Unix milliseconds

	// Relationships
	Reviewer         *Reviewer `gorm:"foreignKey:ReviewerID;constraint:OnDelete:RESTRICT"`
	Item             *Item     `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT"`
	PreviousCategory *Category `gorm:"foreignKey:PreviousCategoryID;constraint:OnDelete:RESTRICT"`
	NewCategory      *Category `gorm:"foreignKey:NewCategoryID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM.
func (Classification) TableName() string {
	return "classifications"
}
