package db_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/config"
	"gladiadores/internal/infra"
	"gladiadores/internal/repositories"
)

var Module = fx.Provide(
	provideDB, repositories.NewTransactor)

func provideDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := infra.Migrate(db); err != nil {
			return nil, err
		}
		log.Info("database schema migrated")
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			infra.ClosePostgresql(db, log)
			return nil
		},
	})
	return db, nil
}
