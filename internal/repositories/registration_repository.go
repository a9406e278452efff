package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gladiadores/internal/models/db_models"
)

type RegistrationRepository interface {
	// CreateWithCounter inserts the registration and bumps its province counter in one
	// transaction. unlocked reports whether this insert pushed the province over its CIDP threshold.
	CreateWithCounter(ctx context.Context, reg *db_models.Registration, defaultThreshold, now int64) (counter *db_models.ProvinceCounter, unlocked bool, err error)
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Registration, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Registration, error)
	FindByCedula(ctx context.Context, cedula string) (*db_models.Registration, error)
	FindByReferralCode(ctx context.Context, code string) (*db_models.Registration, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	CountReferrals(ctx context.Context, code string) (int64, error)
	ListReferrals(ctx context.Context, code string, limit int) ([]db_models.Registration, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	// UpdateVoteStatus moves the vote status only when it is currently `from`.
	UpdateVoteStatus(ctx context.Context, id uuid.UUID, from db_models.VoteStatus, fields map[string]interface{}) (bool, error)
	Leaderboard(ctx context.Context, province string, limit int) ([]db_models.Registration, error)
	ListAudience(ctx context.Context, province *string, level *db_models.PassportLevel) ([]AudienceRow, error)
	// ListIDsAfter pages registration ids in id order for batch jobs.
	ListIDsAfter(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

type AudienceRow struct {
	AccountID uuid.UUID `gorm:"column:account_id"`
	FullName  string    `gorm:"column:full_name"`
	Email     string    `gorm:"column:email"`
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) CreateWithCounter(ctx context.Context, reg *db_models.Registration, defaultThreshold, now int64) (*db_models.ProvinceCounter, bool, error) {
	var (
		counter  db_models.ProvinceCounter
		unlocked bool
	)

	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reg).Error; err != nil {
			return err
		}

		seed := db_models.ProvinceCounter{
			Province:      reg.Province,
			Registrations: 1,
			CIDPThreshold: defaultThreshold,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "province"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"registrations": gorm.Expr("province_counters.registrations + 1"),
				"updated_at":    now,
			}),
		}).Create(&seed).Error
		if err != nil {
			return err
		}

		if err := tx.Where("province = ?", reg.Province).First(&counter).Error; err != nil {
			return err
		}

		res := tx.Model(&db_models.ProvinceCounter{}).
			Where("id = ? AND cidp_unlocked_at IS NULL AND registrations >= cidp_threshold", counter.ID).
			Update("cidp_unlocked_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			unlocked = true
			counter.CIDPUnlockedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &counter, unlocked, nil
}

func (r *registrationRepository) first(ctx context.Context, query string, args ...interface{}) (*db_models.Registration, error) {
	var reg db_models.Registration
	err := conn(ctx, r.db).Where(query, args...).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Registration, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *registrationRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*db_models.Registration, error) {
	return r.first(ctx, "account_id = ?", accountID)
}

func (r *registrationRepository) FindByCedula(ctx context.Context, cedula string) (*db_models.Registration, error) {
	return r.first(ctx, "cedula = ?", cedula)
}

func (r *registrationRepository) FindByReferralCode(ctx context.Context, code string) (*db_models.Registration, error) {
	return r.first(ctx, "referral_code = ?", code)
}

func (r *registrationRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).
		Unscoped().
		Model(&db_models.Registration{}).
		Where("referral_code = ?", code).
		Count(&n).Error
	return n > 0, err
}

func (r *registrationRepository) CountReferrals(ctx context.Context, code string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).
		Model(&db_models.Registration{}).
		Where("referred_by_code = ?", code).
		Count(&n).Error
	return n, err
}

func (r *registrationRepository) ListReferrals(ctx context.Context, code string, limit int) ([]db_models.Registration, error) {
	var regs []db_models.Registration
	err := conn(ctx, r.db).
		Where("referred_by_code = ?", code).
		Order("created_at DESC").
		Limit(limit).
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepository) UpdateColumns(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := conn(ctx, r.db).
		Model(&db_models.Registration{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepository) UpdateVoteStatus(ctx context.Context, id uuid.UUID, from db_models.VoteStatus, fields map[string]interface{}) (bool, error) {
	res := conn(ctx, r.db).
		Model(&db_models.Registration{}).
		Where("id = ? AND vote_status = ?", id, from).
		Updates(fields)
	return res.RowsAffected > 0, res.Error
}

func (r *registrationRepository) Leaderboard(ctx context.Context, province string, limit int) ([]db_models.Registration, error) {
	var regs []db_models.Registration
	q := conn(ctx, r.db).Model(&db_models.Registration{})
	if province != "" {
		q = q.Where("province = ?", province)
	}
	err := q.Order("points DESC").Order("created_at ASC").Limit(limit).Find(&regs).Error
	return regs, err
}

func (r *registrationRepository) ListAudience(ctx context.Context, province *string, level *db_models.PassportLevel) ([]AudienceRow, error) {
	var rows []AudienceRow
	q := conn(ctx, r.db).
		Model(&db_models.Registration{}).
		Select("account_id, full_name, email").
		Where("email <> ''")
	if province != nil {
		q = q.Where("province = ?", *province)
	}
	if level != nil {
		q = q.Where("passport_level = ?", *level)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *registrationRepository) ListIDsAfter(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db).
		Model(&db_models.Registration{}).
		Where("id > ?", after).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
