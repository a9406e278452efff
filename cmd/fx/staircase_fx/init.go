package staircase_fx

import (
	"github.com/go-webauthn/webauthn/webauthn"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/config"
	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
	mem "gladiadores/pkg/memcache"
)

var Module = fx.Provide(
	provideCredentialRepo, provideWebAuthn, provideStaircaseService)

type staircaseParams struct {
	fx.In

	Config           *config.Config
	RegistrationRepo repositories.RegistrationRepository
	CredentialRepo   repositories.WebAuthnCredentialRepository
	Documents        services.DocumentServiceInterface
	Interests        services.InterestServiceInterface
	Passport         services.PassportServiceInterface
	WebAuthn         *webauthn.WebAuthn
	Sessions         mem.TokenStore `name:"webauthn_sessions"`
	Log              *zap.Logger
}

func provideCredentialRepo(db *gorm.DB) repositories.WebAuthnCredentialRepository {
	return repositories.NewWebAuthnCredentialRepository(db)
}

func provideWebAuthn(cfg *config.Config) (*webauthn.WebAuthn, error) {
	return webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.WebAuthn.RPDisplayName,
		RPID:          cfg.WebAuthn.RPID,
		RPOrigins:     cfg.WebAuthn.RPOrigins,
	})
}

func provideStaircaseService(p staircaseParams) services.StaircaseServiceInterface {
	return services.NewStaircaseService(services.StaircaseServiceDeps{
		RegistrationRepo: p.RegistrationRepo,
		CredentialRepo:   p.CredentialRepo,
		Documents:        p.Documents,
		Interests:        p.Interests,
		Passport:         p.Passport,
		WebAuthn:         p.WebAuthn,
		Sessions:         p.Sessions,
		Config: services.StaircaseConfig{
			OCRMaxDistance: p.Config.Gamification.OCRMaxDistance,
			SessionTTL:     p.Config.WebAuthn.SessionTTL,
		},
		Log: p.Log,
	})
}
