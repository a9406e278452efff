package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PassportLevel string

const (
	PassportNone   PassportLevel = "none"
	PassportBronze PassportLevel = "bronze"
	PassportGolden PassportLevel = "golden"
)

// Rank orders levels so callers can enforce that a passport never goes down.
func (l PassportLevel) Rank() int {
	switch l {
	case PassportBronze:
		return 1
	case PassportGolden:
		return 2
	default:
		return 0
	}
}

type VoteStatus string

const (
	VoteNone      VoteStatus = "none"
	VotePending   VoteStatus = "pending"
	VoteValidated VoteStatus = "validated"
	VoteRejected  VoteStatus = "rejected"
)

type Registration struct {
	BaseModel
	AccountID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	FullName       string    `gorm:"not null"`
	Cedula         string    `gorm:"size:11;uniqueIndex;not null"`
	Phone          string    `gorm:"size:16;not null"`
	Email          string
	Province       string `gorm:"index;not null"`
	Municipality   string
	ReferralCode   string        `gorm:"size:8;uniqueIndex;not null"`
	ReferredByCode *string       `gorm:"size:8;index"`
	PassportLevel  PassportLevel `gorm:"size:16;default:none;index"`
	Points         int64         `gorm:"default:0;index"`

	// Bronze staircase
	OathAcceptedAt       *int64
	DocumentFrontKey     *string
	DocumentBackKey      *string
	CedulaVerified       bool `gorm:"default:false"`
	CedulaOCRDistance    *int
	BiometricVerifiedAt  *int64
	Interests            pq.StringArray `gorm:"type:text[]"`
	StaircaseCompletedAt *int64

	// Vote validation
	VoteStatus      VoteStatus `gorm:"size:16;default:none"`
	VoteEvidenceKey *string
	VoteValidatedAt *int64
}
