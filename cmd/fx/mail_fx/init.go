package mail_fx

import (
	"go.uber.org/fx"

	"mlmadmin/internal/config"
	"mlmadmin/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config) (services.IMailService, error) {
	return services.NewMailService(cfg)
}
