package config_fx

import (
	"go.uber.org/fx"

	"gladiadores/config"
)

var Module = fx.Provide(config.Load)
