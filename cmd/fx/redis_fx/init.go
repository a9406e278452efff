package redis_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"gladiadores/config"
	"gladiadores/internal/infra"
)

var Module = fx.Provide(provideRedis)

func provideRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	client, err := infra.InitRedis(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
