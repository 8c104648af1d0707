// internal/storage/models/models.go
package models

import "time"

// BaseModel replaces gorm.Model for tighter control over the columns.
type BaseModel struct {
	ID        uint       `gorm:"primarykey"`
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP"`
	DeletedAt *time.Time `gorm:"index"`
}

// TransferRecord is one intercepted transfer as it cleared the engine.
type TransferRecord struct {
	BaseModel
	FromAddress string `gorm:"index;not null;type:varchar(64)"`
	ToAddress   string `gorm:"index;not null;type:varchar(64)"`
	Direction   string `gorm:"not null;type:varchar(8)"`
	Requested   uint64 `gorm:"not null"`
	Delivered   uint64 `gorm:"not null"`
	FeesTaken   uint64 `gorm:"not null"`
	FeeExempt   bool   `gorm:"not null;default:false"`
}

// DistributionRecord is one reference-currency payout to a fee recipient.
type DistributionRecord struct {
	BaseModel
	Recipient string `gorm:"index;not null;type:varchar(64)"`
	Deposit   uint64 `gorm:"not null"`
	Payout    uint64 `gorm:"not null"`
}
