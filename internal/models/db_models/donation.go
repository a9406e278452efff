package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DonationStatus string

const (
	DonationPending  DonationStatus = "pending"
	DonationApproved DonationStatus = "approved"
	DonationRejected DonationStatus = "rejected"
)

type Donation struct {
	BaseModel
	RegistrationID  uuid.UUID      `gorm:"type:uuid;index;not null"`
	AmountMinor     int64          `gorm:"not null"` // 150000 = RD$1,500.00
	Currency        string         `gorm:"size:3;not null"`
	EvidenceKey     string         `gorm:"not null"`
	Status          DonationStatus `gorm:"size:16;index;not null"`
	ReviewedBy      *uuid.UUID     `gorm:"type:uuid"`
	ReviewedAt      *int64
	RejectionReason string
	Metadata        datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Registration Registration `gorm:"foreignKey:RegistrationID"`
}
