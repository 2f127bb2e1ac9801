package models

import (
	"time"
)

// Upload represents a receipt image stored for a profile. StoredName is the
// uuid-based on-disk name; FileName keeps the client's original name.
type Upload struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileName    string  `gorm:"size:255;not null"`
	StoredName  string  `gorm:"size:255;uniqueIndex"`
	StorePath   string  `gorm:"column:store_path;size:512"` // public relative path (e.g. public/receipts/xxx.jpg)
	ProfileID   uint    `gorm:"index;not null"`             // FK to profiles.id (profile_id)
	Profile     Profile `gorm:"foreignKey:ProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ContentType string  `gorm:"size:128"`
	ReceiptID   *uint   `gorm:"index"` // FK to receipt_records.id (nullable until processed)
	// Mark upload as failed for pipeline processing (do not delete record so front-end/admin can review)
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
