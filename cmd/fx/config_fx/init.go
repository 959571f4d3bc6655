package config_fx

import (
	"go.uber.org/fx"

	"mlmadmin/internal/config"
)

var Module = fx.Provide(config.Load)
