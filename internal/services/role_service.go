package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gladiadores/internal/models/db_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

type RoleServiceInterface interface {
	HasRole(ctx context.Context, accountID uuid.UUID, role string) (bool, error)
	Assign(ctx context.Context, grantedBy *uuid.UUID, accountID uuid.UUID, role string) error
	AssignByEmail(ctx context.Context, email, role string) error
	Revoke(ctx context.Context, accountID uuid.UUID, role string) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]string, error)
	ListAll(ctx context.Context, page, pageSize int) ([]resp.RoleResponse, error)
}

type RoleService struct {
	roleRepo    repositories.RoleRepository
	accountRepo repositories.AccountRepository
	log         *zap.Logger
}

func NewRoleService(roleRepo repositories.RoleRepository, accountRepo repositories.AccountRepository, log *zap.Logger) RoleServiceInterface {
	return &RoleService{roleRepo: roleRepo, accountRepo: accountRepo, log: log}
}

func (r *RoleService) HasRole(ctx context.Context, accountID uuid.UUID, role string) (bool, error) {
	if !db_models.IsKnownRole(role) {
		return false, utils.ErrInvalidRole
	}
	ok, err := r.roleRepo.HasRole(ctx, accountID, role)
	if err != nil {
		return false, utils.ErrDatabaseError
	}
	return ok, nil
}

func (r *RoleService) Assign(ctx context.Context, grantedBy *uuid.UUID, accountID uuid.UUID, role string) error {
	if !db_models.IsKnownRole(role) {
		return utils.ErrInvalidRole
	}
	account, err := r.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}
	if err := r.roleRepo.Assign(ctx, accountID, role, grantedBy); err != nil {
		return utils.ErrDatabaseError
	}
	r.log.Info("role assigned", zap.String("account_id", accountID.String()), zap.String("role", role))
	return nil
}

func (r *RoleService) AssignByEmail(ctx context.Context, email, role string) error {
	account, err := r.accountRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}
	return r.Assign(ctx, nil, account.ID, role)
}

func (r *RoleService) Revoke(ctx context.Context, accountID uuid.UUID, role string) error {
	if !db_models.IsKnownRole(role) {
		return utils.ErrInvalidRole
	}
	if _, err := r.roleRepo.Revoke(ctx, accountID, role); err != nil {
		return utils.ErrDatabaseError
	}
	r.log.Info("role revoked", zap.String("account_id", accountID.String()), zap.String("role", role))
	return nil
}

func (r *RoleService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	roles, err := r.roleRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return roles, nil
}

func (r *RoleService) ListAll(ctx context.Context, page, pageSize int) ([]resp.RoleResponse, error) {
	if err := utils.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}
	rows, err := r.roleRepo.ListAll(ctx, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]resp.RoleResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, resp.RoleResponse{
			AccountID: row.AccountID.String(),
			Email:     row.Email,
			Role:      row.Role,
			GrantedAt: utils.FromUnixSecondsDO(row.CreatedAt),
		})
	}
	return out, nil
}
