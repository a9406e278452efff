package logger_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"gladiadores/config"
	"gladiadores/pkg/logger"
)

var Module = fx.Provide(provideLogger)

func provideLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}
