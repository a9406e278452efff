package province_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
)

var Module = fx.Provide(
	NewProvinceService, NewProvinceRepo)

func NewProvinceService(
	repo repositories.ProvinceRepository,
	hub services.RealtimeHub,
	rules services.GamificationRules,
	log *zap.Logger,
) services.ProvinceServiceInterface {
	return services.NewProvinceService(repo, hub, rules, log)
}

func NewProvinceRepo(db *gorm.DB) repositories.ProvinceRepository {
	return repositories.NewProvinceRepository(db)
}
