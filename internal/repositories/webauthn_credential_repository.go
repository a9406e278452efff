package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
)

type WebAuthnCredentialRepository interface {
	Create(ctx context.Context, cred *db_models.WebAuthnCredential) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.WebAuthnCredential, error)
}

type webAuthnCredentialRepository struct {
	db *gorm.DB
}

func NewWebAuthnCredentialRepository(db *gorm.DB) WebAuthnCredentialRepository {
	return &webAuthnCredentialRepository{db: db}
}

func (w *webAuthnCredentialRepository) Create(ctx context.Context, cred *db_models.WebAuthnCredential) error {
	return w.db.WithContext(ctx).Create(cred).Error
}

func (w *webAuthnCredentialRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.WebAuthnCredential, error) {
	var creds []db_models.WebAuthnCredential
	err := w.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&creds).Error
	return creds, err
}
