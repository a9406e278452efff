package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
)

type CommunicationRepository interface {
	Create(ctx context.Context, comm *db_models.Communication) error
	SetEmailsSent(ctx context.Context, id uuid.UUID, n int) error
	// ListForAudience returns communications addressed to everyone, to the province, or to the level.
	ListForAudience(ctx context.Context, province string, level db_models.PassportLevel, page, pageSize int) ([]db_models.Communication, error)
	ListAll(ctx context.Context, page, pageSize int) ([]db_models.Communication, error)
}

type communicationRepository struct {
	db *gorm.DB
}

func NewCommunicationRepository(db *gorm.DB) CommunicationRepository {
	return &communicationRepository{db: db}
}

func (c *communicationRepository) Create(ctx context.Context, comm *db_models.Communication) error {
	return c.db.WithContext(ctx).Create(comm).Error
}

func (c *communicationRepository) SetEmailsSent(ctx context.Context, id uuid.UUID, n int) error {
	return c.db.WithContext(ctx).
		Model(&db_models.Communication{}).
		Where("id = ?", id).
		Update("emails_sent", n).Error
}

func (c *communicationRepository) ListForAudience(ctx context.Context, province string, level db_models.PassportLevel, page, pageSize int) ([]db_models.Communication, error) {
	var comms []db_models.Communication
	err := c.db.WithContext(ctx).
		Where("audience = ?", db_models.AudienceAll).
		Or("audience = ? AND province = ?", db_models.AudienceProvince, province).
		Or("audience = ? AND passport_level = ?", db_models.AudienceLevel, level).
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&comms).Error
	return comms, err
}

func (c *communicationRepository) ListAll(ctx context.Context, page, pageSize int) ([]db_models.Communication, error) {
	var comms []db_models.Communication
	err := c.db.WithContext(ctx).
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&comms).Error
	return comms, err
}
