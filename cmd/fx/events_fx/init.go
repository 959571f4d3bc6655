package events_fx

import (
	"go.uber.org/fx"

	"mlmadmin/internal/config"
	"mlmadmin/internal/events"
	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
)

var Module = fx.Options(
	fx.Provide(events.NewBus, providePublisher),
	fx.Invoke(registerSubscribers),
)

func providePublisher(bus *events.Bus) events.Publisher {
	return bus
}

// registerSubscribers wires side effects in order: the audit entry is
// written before the member is emailed.
func registerSubscribers(
	bus *events.Bus,
	cfg *config.Config,
	accounts repositories.AccountRepository,
	audit repositories.AuditRepository,
	templates services.EmailTemplateServiceInterface,
	mail services.IMailService,
) {
	bus.Subscribe("audit", events.AuditSubscriber(audit))
	bus.Subscribe("notification", events.NotificationSubscriber(accounts, templates, mail, cfg.AppBaseURL))
}
