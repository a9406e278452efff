package realtime_fx

import (
	"go.uber.org/fx"

	"gladiadores/internal/services"
)

var Module = fx.Provide(services.NewRedisHub)
