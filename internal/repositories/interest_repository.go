package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gladiadores/internal/models/db_models"
)

type InterestRepositoryInterface interface {
	CreateInterest(ctx context.Context, interest *db_models.Interest) error
	GetInterestBySlug(ctx context.Context, slug string) (*db_models.Interest, error)
	GetAllInterests(ctx context.Context, page int, pageSize int) ([]db_models.Interest, error)
	CountBySlugs(ctx context.Context, slugs []string) (int64, error)
	Seed(ctx context.Context, interests []db_models.Interest) error
}

func NewInterestRepository(db *gorm.DB) InterestRepositoryInterface {
	return &InterestRepository{db: db}
}

type InterestRepository struct {
	db *gorm.DB
}

func (t InterestRepository) CreateInterest(ctx context.Context, interest *db_models.Interest) error {
	return t.db.WithContext(ctx).Create(interest).Error
}

func (t InterestRepository) GetInterestBySlug(ctx context.Context, slug string) (*db_models.Interest, error) {
	var interest db_models.Interest
	err := t.db.WithContext(ctx).Where("slug = ?", slug).First(&interest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}
	return &interest, nil
}

func (t InterestRepository) GetAllInterests(ctx context.Context, page int, pageSize int) ([]db_models.Interest, error) {
	var interests []db_models.Interest
	err := t.db.WithContext(ctx).
		Order("es_name ASC").
		Scopes(paginate(page, pageSize)).
		Find(&interests).Error
	if err != nil {
		return nil, err
	}
	return interests, nil
}

func (t InterestRepository) CountBySlugs(ctx context.Context, slugs []string) (int64, error) {
	var n int64
	err := t.db.WithContext(ctx).
		Model(&db_models.Interest{}).
		Where("slug IN ?", slugs).
		Count(&n).Error
	return n, err
}

func (t InterestRepository) Seed(ctx context.Context, interests []db_models.Interest) error {
	return t.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&interests).Error
}
