package donation_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
)

var Module = fx.Provide(
	provideDonationRepo, provideDonationService, provideVoteService,
)

func provideDonationRepo(db *gorm.DB) repositories.DonationRepository {
	return repositories.NewDonationRepository(db)
}

func provideDonationService(
	tx repositories.Transactor,
	donationRepo repositories.DonationRepository,
	registrationRepo repositories.RegistrationRepository,
	documents services.DocumentServiceInterface,
	passport services.PassportServiceInterface,
	hub services.RealtimeHub,
	log *zap.Logger,
) services.DonationServiceInterface {
	return services.NewDonationService(tx, donationRepo, registrationRepo, documents, passport, hub, log)
}

func provideVoteService(
	tx repositories.Transactor,
	registrationRepo repositories.RegistrationRepository,
	documents services.DocumentServiceInterface,
	passport services.PassportServiceInterface,
	hub services.RealtimeHub,
	log *zap.Logger,
) services.VoteServiceInterface {
	return services.NewVoteService(tx, registrationRepo, documents, passport, hub, log)
}
