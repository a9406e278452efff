package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gladiadores/internal/models/db_models"
)

type RoleRepository interface {
	HasRole(ctx context.Context, accountID uuid.UUID, role string) (bool, error)
	Assign(ctx context.Context, accountID uuid.UUID, role string, grantedBy *uuid.UUID) error
	Revoke(ctx context.Context, accountID uuid.UUID, role string) (bool, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]string, error)
	ListAll(ctx context.Context, page, pageSize int) ([]RoleRow, error)
}

type RoleRow struct {
	AccountID uuid.UUID `gorm:"column:account_id"`
	Email     string    `gorm:"column:email"`
	Role      string    `gorm:"column:role"`
	CreatedAt int64     `gorm:"column:created_at"`
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) HasRole(ctx context.Context, accountID uuid.UUID, role string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db_models.UserRole{}).
		Where("account_id = ? AND role = ?", accountID, role).
		Count(&n).Error
	return n > 0, err
}

// Assign is idempotent: granting a role the account already holds is a no-op.
func (r *roleRepository) Assign(ctx context.Context, accountID uuid.UUID, role string, grantedBy *uuid.UUID) error {
	row := db_models.UserRole{AccountID: accountID, Role: role, GrantedBy: grantedBy}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "role"}},
			DoNothing: true,
		}).
		Create(&row).Error
}

func (r *roleRepository) Revoke(ctx context.Context, accountID uuid.UUID, role string) (bool, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("account_id = ? AND role = ?", accountID, role).
		Delete(&db_models.UserRole{})
	return res.RowsAffected > 0, res.Error
}

func (r *roleRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Model(&db_models.UserRole{}).
		Where("account_id = ?", accountID).
		Order("role ASC").
		Pluck("role", &roles).Error
	return roles, err
}

func (r *roleRepository) ListAll(ctx context.Context, page, pageSize int) ([]RoleRow, error) {
	var rows []RoleRow
	err := r.db.WithContext(ctx).
		Table("user_roles ur").
		Select("ur.account_id, a.email, ur.role, ur.created_at").
		Joins("JOIN accounts a ON a.id = ur.account_id").
		Where("ur.deleted_at IS NULL").
		Order("ur.created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&rows).Error
	return rows, err
}
