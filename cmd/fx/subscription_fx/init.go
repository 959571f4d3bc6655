package subscription_fx

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"mlmadmin/internal/config"
	"mlmadmin/internal/events"
	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
)

var Module = fx.Options(
	fx.Provide(
		provideSubscriptionRepo, providePaymentRepo,
		provideGateways,
		provideSubscriptionService,
		provideRenewalService, provideRenewalScheduler,
	),
	fx.Invoke(startRenewalScheduler),
)

func provideSubscriptionRepo(db *gorm.DB) repositories.SubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func providePaymentRepo(db *gorm.DB) repositories.PaymentRepository {
	return repositories.NewPaymentRepository(db)
}

func provideGateways(cfg *config.Config, wallet services.WalletServiceInterface) *services.GatewayRegistry {
	client := &http.Client{Timeout: 20 * time.Second}
	return services.NewGatewayRegistry(
		services.NewCardGateway(cfg.CardGatewayURL, cfg.CardGatewayKey, client),
		services.NewPayPalGateway(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, client),
		services.NewWalletGateway(wallet),
	)
}

func provideSubscriptionService(
	subs repositories.SubscriptionRepository,
	plans repositories.IPlanRepository,
	accounts repositories.AccountRepository,
	payments repositories.PaymentRepository,
	gateways *services.GatewayRegistry,
	commissions services.CommissionServiceInterface,
	bus events.Publisher,
) services.SubscriptionServiceInterface {
	return services.NewSubscriptionService(subs, plans, accounts, payments, gateways, commissions, bus)
}

func provideRenewalService(
	subs repositories.SubscriptionRepository,
	payments repositories.PaymentRepository,
	gateways *services.GatewayRegistry,
	commissions services.CommissionServiceInterface,
	bus events.Publisher,
	cfg *config.Config,
) services.RenewalServiceInterface {
	return services.NewRenewalService(subs, payments, gateways, commissions, bus, cfg.RenewalGraceDays)
}

func provideRenewalScheduler(renewals services.RenewalServiceInterface, cfg *config.Config) *services.RenewalScheduler {
	return services.NewRenewalScheduler(renewals, cfg.RenewalInterval)
}

func startRenewalScheduler(lc fx.Lifecycle, scheduler *services.RenewalScheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
}
