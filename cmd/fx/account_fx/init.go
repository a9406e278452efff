package account_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/config"
	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
	mem "gladiadores/pkg/memcache"
	"gladiadores/pkg/utils"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo,
	provideRoleRepo, provideRoleService,
	provideTokenIssuer)

type accountParams struct {
	fx.In

	Config           *config.Config
	AccountRepo      repositories.AccountRepository
	RegistrationRepo repositories.RegistrationRepository
	MailService      services.IMailService
	Issuer           *utils.TokenIssuer
	ResetTokens      mem.TokenStore `name:"reset_tokens"`
	Denylist         mem.TokenStore `name:"jwt_denylist"`
	Log              *zap.Logger
}

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideRoleRepo(db *gorm.DB) repositories.RoleRepository {
	return repositories.NewRoleRepository(db)
}

func provideTokenIssuer(cfg *config.Config) *utils.TokenIssuer {
	return utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func provideAccountService(p accountParams) services.AccountServiceInterface {
	return services.NewAccountService(services.AccountServiceDeps{
		AccountRepo:      p.AccountRepo,
		RegistrationRepo: p.RegistrationRepo,
		MailService:      p.MailService,
		ResetTokens:      p.ResetTokens,
		Denylist:         p.Denylist,
		Issuer:           p.Issuer,
		ResetTTL:         p.Config.Auth.ResetTokenTTL,
		Log:              p.Log,
	})
}

func provideRoleService(roleRepo repositories.RoleRepository, accountRepo repositories.AccountRepository, log *zap.Logger) services.RoleServiceInterface {
	return services.NewRoleService(roleRepo, accountRepo, log)
}
