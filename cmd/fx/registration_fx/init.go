package registration_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/config"
	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
)

var Module = fx.Provide(
	provideRegistrationRepo, provideRules,
	providePassportService, provideRegistrationService)

func provideRegistrationRepo(db *gorm.DB) repositories.RegistrationRepository {
	return repositories.NewRegistrationRepository(db)
}

func provideRules(cfg *config.Config) services.GamificationRules {
	return services.NewGamificationRules(cfg.Gamification)
}

func providePassportService(
	registrationRepo repositories.RegistrationRepository,
	donationRepo repositories.DonationRepository,
	rules services.GamificationRules,
	hub services.RealtimeHub,
	cfg *config.Config,
	log *zap.Logger,
) services.PassportServiceInterface {
	return services.NewPassportService(registrationRepo, donationRepo, rules, hub, cfg.App.BaseURL, log)
}

func provideRegistrationService(
	registrationRepo repositories.RegistrationRepository,
	provinceRepo repositories.ProvinceRepository,
	passport services.PassportServiceInterface,
	mailService services.IMailService,
	hub services.RealtimeHub,
	rules services.GamificationRules,
	cfg *config.Config,
	log *zap.Logger,
) services.RegistrationServiceInterface {
	return services.NewRegistrationService(services.RegistrationServiceDeps{
		RegistrationRepo: registrationRepo,
		ProvinceRepo:     provinceRepo,
		Passport:         passport,
		MailService:      mailService,
		Hub:              hub,
		Rules:            rules,
		BaseURL:          cfg.App.BaseURL,
		Log:              log,
	})
}
