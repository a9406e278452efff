package storage_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"gladiadores/config"
	"gladiadores/internal/infra"
	"gladiadores/internal/repositories"
	"gladiadores/internal/services"
)

var Module = fx.Provide(
	provideObjectStore, provideDocumentService)

func provideObjectStore(cfg *config.Config) (infra.ObjectStore, error) {
	return infra.NewS3Store(context.Background(), cfg.Storage)
}

func provideDocumentService(store infra.ObjectStore, registrationRepo repositories.RegistrationRepository, cfg *config.Config, log *zap.Logger) services.DocumentServiceInterface {
	return services.NewDocumentService(store, registrationRepo, cfg.Storage.MaxUploadMB, cfg.Storage.PresignTTL, log)
}
