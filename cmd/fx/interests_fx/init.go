package interests_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
)

var Module = fx.Provide(
	provideInterestRepo, provideInterestService)

func provideInterestRepo(db *gorm.DB) repositories.InterestRepositoryInterface {
	return repositories.NewInterestRepository(db)
}

func provideInterestService(interestRepo repositories.InterestRepositoryInterface) services.InterestServiceInterface {
	return services.NewInterestService(interestRepo)
}
