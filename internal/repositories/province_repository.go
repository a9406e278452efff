package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gladiadores/internal/models/db_models"
)

type ProvinceRepository interface {
	Seed(ctx context.Context, names []string, threshold int64) error
	List(ctx context.Context) ([]db_models.ProvinceCounter, error)
	FindByName(ctx context.Context, name string) (*db_models.ProvinceCounter, error)
	SetThreshold(ctx context.Context, name string, threshold int64) error
	// Recount sets every counter to its live registration count in one statement and
	// returns the counters that changed, with their corrected values.
	Recount(ctx context.Context, now int64) ([]ProvinceCount, error)
	// MarkUnlocked stamps cidp_unlocked_at once; it reports false when the province was
	// already unlocked or is still below its threshold.
	MarkUnlocked(ctx context.Context, name string, at int64) (bool, error)
}

type ProvinceCount struct {
	Province string `gorm:"column:province"`
	Count    int64  `gorm:"column:count"`
}

type provinceRepository struct {
	db *gorm.DB
}

func NewProvinceRepository(db *gorm.DB) ProvinceRepository {
	return &provinceRepository{db: db}
}

func (p *provinceRepository) Seed(ctx context.Context, names []string, threshold int64) error {
	rows := make([]db_models.ProvinceCounter, 0, len(names))
	for _, n := range names {
		rows = append(rows, db_models.ProvinceCounter{Province: n, CIDPThreshold: threshold})
	}
	return conn(ctx, p.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "province"}}, DoNothing: true}).
		Create(&rows).Error
}

func (p *provinceRepository) List(ctx context.Context) ([]db_models.ProvinceCounter, error) {
	var counters []db_models.ProvinceCounter
	err := conn(ctx, p.db).
		Order("registrations DESC").
		Order("province ASC").
		Find(&counters).Error
	return counters, err
}

func (p *provinceRepository) FindByName(ctx context.Context, name string) (*db_models.ProvinceCounter, error) {
	var counter db_models.ProvinceCounter
	err := conn(ctx, p.db).Where("LOWER(province) = LOWER(?)", name).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}

func (p *provinceRepository) SetThreshold(ctx context.Context, name string, threshold int64) error {
	res := conn(ctx, p.db).
		Model(&db_models.ProvinceCounter{}).
		Where("province = ?", name).
		Update("cidp_threshold", threshold)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

const recountSQL = `
UPDATE province_counters AS pc
SET registrations = (
        SELECT COUNT(*) FROM registrations r
        WHERE r.province = pc.province AND r.deleted_at IS NULL
    ),
    updated_at = ?
WHERE pc.deleted_at IS NULL
  AND pc.registrations <> (
        SELECT COUNT(*) FROM registrations r
        WHERE r.province = pc.province AND r.deleted_at IS NULL
    )
RETURNING pc.province, pc.registrations AS count`

func (p *provinceRepository) Recount(ctx context.Context, now int64) ([]ProvinceCount, error) {
	var rows []ProvinceCount
	err := conn(ctx, p.db).Raw(recountSQL, now).Scan(&rows).Error
	return rows, err
}

func (p *provinceRepository) MarkUnlocked(ctx context.Context, name string, at int64) (bool, error) {
	res := conn(ctx, p.db).
		Model(&db_models.ProvinceCounter{}).
		Where("province = ? AND cidp_unlocked_at IS NULL AND registrations >= cidp_threshold", name).
		Update("cidp_unlocked_at", at)
	return res.RowsAffected > 0, res.Error
}
