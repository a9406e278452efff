package communication_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/config"
	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
)

var Module = fx.Provide(
	provideCommunicationRepo, provideCommunicationService)

func provideCommunicationRepo(db *gorm.DB) repositories.CommunicationRepository {
	return repositories.NewCommunicationRepository(db)
}

func provideCommunicationService(
	commRepo repositories.CommunicationRepository,
	registrationRepo repositories.RegistrationRepository,
	provinceRepo repositories.ProvinceRepository,
	mailService services.IMailService,
	hub services.RealtimeHub,
	cfg *config.Config,
	log *zap.Logger,
) services.CommunicationServiceInterface {
	return services.NewCommunicationService(services.CommunicationServiceDeps{
		CommRepo:         commRepo,
		RegistrationRepo: registrationRepo,
		ProvinceRepo:     provinceRepo,
		MailService:      mailService,
		Hub:              hub,
		BaseURL:          cfg.App.BaseURL,
		Log:              log,
	})
}
