package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
	"gladiadores/internal/models/request_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	mem "gladiadores/pkg/memcache"
	"gladiadores/pkg/utils"
)

type AccountServiceInterface interface {
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*resp.AccountResponse, error)
	Login(ctx context.Context, request request_models.LoginRequest) (*resp.AccountLoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error
	Logout(ctx context.Context, claims *utils.Claims) error
	Me(ctx context.Context, accountID uuid.UUID) (*resp.AccountResponse, error)
}

type AccountService struct {
	accountRepo      repositories.AccountRepository
	registrationRepo repositories.RegistrationRepository
	mailService      IMailService
	resetTokens      mem.TokenStore
	denylist         mem.TokenStore
	issuer           *utils.TokenIssuer
	resetTTL         time.Duration
	log              *zap.Logger
}

type AccountServiceDeps struct {
	AccountRepo      repositories.AccountRepository
	RegistrationRepo repositories.RegistrationRepository
	MailService      IMailService
	ResetTokens      mem.TokenStore
	Denylist         mem.TokenStore
	Issuer           *utils.TokenIssuer
	ResetTTL         time.Duration
	Log              *zap.Logger
}

func NewAccountService(d AccountServiceDeps) AccountServiceInterface {
	return &AccountService{
		accountRepo:      d.AccountRepo,
		registrationRepo: d.RegistrationRepo,
		mailService:      d.MailService,
		resetTokens:      d.ResetTokens,
		denylist:         d.Denylist,
		issuer:           d.Issuer,
		resetTTL:         d.ResetTTL,
		log:              d.Log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func roleNames(roles []db_models.UserRole) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Role)
	}
	return out
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*resp.AccountResponse, error) {
	email := normalizeEmail(request.Email)

	existing, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existing != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	account := &db_models.Account{
		Name:         strings.TrimSpace(request.DisplayName),
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := a.accountRepo.InsertTx(ctx, account, db_models.RoleUser); err != nil {
		return nil, utils.ErrDatabaseError
	}

	a.log.Info("account created", zap.String("account_id", account.ID.String()))
	return &resp.AccountResponse{
		ID:    account.ID.String(),
		Name:  account.Name,
		Email: account.Email,
		Roles: roleNames(account.Roles),
	}, nil
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*resp.AccountLoginResponse, error) {
	account, err := a.accountRepo.FindByEmail(ctx, normalizeEmail(request.Email))
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	roles := roleNames(account.Roles)
	token, claims, err := a.issuer.CreateToken(account.ID, roles)
	if err != nil {
		return nil, err
	}

	if err := a.accountRepo.TouchLastLogin(ctx, account.ID, utils.NowUnixSeconds()); err != nil {
		a.log.Warn("failed to stamp last login", zap.String("account_id", account.ID.String()), zap.Error(err))
	}

	reg, err := a.registrationRepo.FindByAccount(ctx, account.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	return &resp.AccountLoginResponse{
		Token:           token,
		ExpiresAt:       claims.ExpiresAt.Time,
		Roles:           roles,
		HasRegistration: reg != nil,
	}, nil
}

// ForgotPassword never reveals whether the email exists.
func (a *AccountService) ForgotPassword(ctx context.Context, email string) error {
	account, err := a.accountRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return nil
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}
	if err := a.resetTokens.Set(ctx, token, account.ID.String(), a.resetTTL); err != nil {
		return err
	}

	if err := a.mailService.SendPasswordReset(account.Email, token); err != nil {
		a.log.Error("failed to send reset mail", zap.String("account_id", account.ID.String()), zap.Error(err))
	}
	return nil
}

func (a *AccountService) ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error {
	value, err := a.resetTokens.Consume(ctx, request.Token)
	if err != nil {
		return err
	}
	if value == "" {
		return utils.ErrInvalidResetToken
	}

	accountID, err := uuid.Parse(value)
	if err != nil {
		return utils.ErrInvalidResetToken
	}

	hashed, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return err
	}
	if err := a.accountRepo.UpdatePassword(ctx, accountID, hashed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrInvalidResetToken
		}
		return utils.ErrDatabaseError
	}
	return nil
}

// Logout denylists the token id for whatever lifetime the token has left.
func (a *AccountService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := a.issuer.Remaining(claims)
	if ttl <= 0 {
		return nil
	}
	return a.denylist.Set(ctx, claims.ID, claims.UserID, ttl)
}

func (a *AccountService) Me(ctx context.Context, accountID uuid.UUID) (*resp.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	reg, err := a.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	return &resp.AccountResponse{
		ID:              account.ID.String(),
		Name:            account.Name,
		Email:           account.Email,
		Roles:           roleNames(account.Roles),
		HasRegistration: reg != nil,
	}, nil
}
