package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
)

type DonationRepository interface {
	Create(ctx context.Context, donation *db_models.Donation) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Donation, error)
	ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]db_models.Donation, error)
	ListByStatus(ctx context.Context, status db_models.DonationStatus, page, pageSize int) ([]db_models.Donation, error)
	CountApproved(ctx context.Context, registrationID uuid.UUID) (int64, error)
	// Review transitions a pending donation; false means it was no longer pending.
	Review(ctx context.Context, id uuid.UUID, to db_models.DonationStatus, reviewer uuid.UUID, at int64, reason string) (bool, error)
}

type donationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (d *donationRepository) Create(ctx context.Context, donation *db_models.Donation) error {
	return conn(ctx, d.db).Omit("Registration").Create(donation).Error
}

func (d *donationRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Donation, error) {
	var donation db_models.Donation
	err := conn(ctx, d.db).Preload("Registration").First(&donation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &donation, nil
}

func (d *donationRepository) ListByRegistration(ctx context.Context, registrationID uuid.UUID) ([]db_models.Donation, error) {
	var donations []db_models.Donation
	err := conn(ctx, d.db).
		Where("registration_id = ?", registrationID).
		Order("created_at DESC").
		Find(&donations).Error
	return donations, err
}

func (d *donationRepository) ListByStatus(ctx context.Context, status db_models.DonationStatus, page, pageSize int) ([]db_models.Donation, error) {
	var donations []db_models.Donation
	err := conn(ctx, d.db).
		Preload("Registration").
		Where("status = ?", status).
		Order("created_at ASC").
		Scopes(paginate(page, pageSize)).
		Find(&donations).Error
	return donations, err
}

func (d *donationRepository) CountApproved(ctx context.Context, registrationID uuid.UUID) (int64, error) {
	var n int64
	err := conn(ctx, d.db).
		Model(&db_models.Donation{}).
		Where("registration_id = ? AND status = ?", registrationID, db_models.DonationApproved).
		Count(&n).Error
	return n, err
}

func (d *donationRepository) Review(ctx context.Context, id uuid.UUID, to db_models.DonationStatus, reviewer uuid.UUID, at int64, reason string) (bool, error) {
	res := conn(ctx, d.db).
		Model(&db_models.Donation{}).
		Where("id = ? AND status = ?", id, db_models.DonationPending).
		Updates(map[string]interface{}{
			"status":           to,
			"reviewed_by":      reviewer,
			"reviewed_at":      at,
			"rejection_reason": reason,
		})
	return res.RowsAffected > 0, res.Error
}
