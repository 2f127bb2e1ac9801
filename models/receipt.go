package models

import "time"

// ReceiptRecord is one processed receipt belonging to a user. Amount columns
// are minor units (cents); detected values are nil when the parser found no
// such line on the receipt.
type ReceiptRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null;uniqueIndex:idx_user_receipt_file"`
	FileName  string `gorm:"size:255;not null;uniqueIndex:idx_user_receipt_file"`

	Merchant string `gorm:"size:255"`
	Cashier  string `gorm:"size:255"`
	BillNo   string `gorm:"size:64"`

	ComputedSubtotal int64 `gorm:"not null"`
	DetectedSubtotal *int64
	DetectedTax      *int64
	DetectedTotal    *int64
	Cash             *int64
	Change           *int64
	Discrepancy      int64
	Status           string `gorm:"size:16;not null"` // match / mismatch / unverifiable

	Confidence float64 `gorm:"not null"`
	Rectified  bool    `gorm:"default:false"`
	Warnings   string  `gorm:"type:text"` // newline-joined

	Date  time.Time     `gorm:"not null"`
	Items []ReceiptItem `gorm:"foreignKey:RecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// ReceiptItem is one purchased line on a ReceiptRecord.
type ReceiptItem struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	RecordID  uint    `gorm:"index;not null"`
	Position  int     `gorm:"not null"`
	Desc      string  `gorm:"column:description;size:255;not null"`
	Quantity  float64 `gorm:"not null"`
	UnitPrice int64   `gorm:"not null"`
	LineTotal int64   `gorm:"not null"`
	// Inconsistent marks items whose quantity x unit price disagreed with the
	// printed line total; the printed total wins.
	Inconsistent bool `gorm:"default:false"`
}
