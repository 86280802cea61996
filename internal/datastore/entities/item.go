package entities

import "time"

// Item is a recording awaiting or having received classification.
//
// LeaseHolderID and LeasedAt are either both set or both nil. Version is
// bumped by every lease or classification write and guards those writes
// against stale reads.
type Item struct {
	ID                uint   `gorm:"primaryKey"`
	Filename          string `gorm:"size:255;not null"`
	ContentRef        string `gorm:"size:512;not null;uniqueIndex"` // opaque reference into the content store
	InitialCategoryID uint   `gorm:"not null;index"`
	CurrentCategoryID uint   `gorm:"not null;index:idx_items_eligibility,priority:1"`
	UploadedByID      uint   `gorm:"not null;index"`
	UploadedAt        int64  `gorm:"not null"` // Unix milliseconds
	LeaseHolderID     *uint  `gorm:"index:idx_items_eligibility,priority:2"`
	LeasedAt          *int64 // Unix milliseconds
	Version           uint   `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`

	// Relationships
	InitialCategory *Category `gorm:"foreignKey:InitialCategoryID;constraint:OnDelete:RESTRICT"`
	CurrentCategory *Category `gorm:"foreignKey:CurrentCategoryID;constraint:OnDelete:RESTRICT"`
	UploadedBy      *Reviewer `gorm:"foreignKey:UploadedByID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM.
func (Item) TableName() string {
	return "items"
}

// IsLeased reports whether the item carries a lease stamp, expired or not.
func (i *Item) IsLeased() bool {
	return i.LeaseHolderID != nil && i.LeasedAt != nil
}

// HeldBy reports whether the lease stamp belongs to reviewerID.
func (i *Item) HeldBy(reviewerID uint) bool {
	return i.LeaseHolderID != nil && *i.LeaseHolderID == reviewerID
}
