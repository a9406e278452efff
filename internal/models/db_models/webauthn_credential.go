package db_models

import "github.com/google/uuid"

type WebAuthnCredential struct {
	BaseModel
	AccountID      uuid.UUID `gorm:"type:uuid;index;not null"`
	CredentialID   string    `gorm:"uniqueIndex;not null"` // base64url
	CredentialJSON string    `gorm:"type:text;not null"`
	LastUsedAt     *int64
}

func (WebAuthnCredential) TableName() string { return "webauthn_credentials" }
