package jobs_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"gladiadores/config"
	"gladiadores/internal/services"
)

var Module = fx.Options(
	fx.Provide(services.NewScheduler),
	fx.Invoke(startScheduler),
)

func startScheduler(lc fx.Lifecycle, cfg *config.Config, scheduler *services.Scheduler, log *zap.Logger) error {
	if !cfg.Jobs.Enabled {
		log.Info("background jobs disabled")
		return nil
	}
	if err := scheduler.Register(cfg.Jobs.ReconcileSpec); err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
	return nil
}
