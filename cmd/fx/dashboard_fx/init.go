package dashboard_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"mlmadmin/internal/config"
	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/cache"
)

var Module = fx.Provide(
	provideDashboardRepo, provideDashboardService,
	provideAuditRepo, provideAuditService,
	provideNoteRepo, provideNoteService,
	provideMemberSummaryService,
)

func provideDashboardRepo(db *gorm.DB) repositories.DashboardRepository {
	return repositories.NewDashboardRepository(db)
}

func provideDashboardService(dashboardRepo repositories.DashboardRepository, store cache.Store, cfg *config.Config) services.DashboardService {
	return services.NewDashboardService(dashboardRepo, store, cfg.DashboardCacheTTL, cfg.Currency)
}

func provideAuditRepo(db *gorm.DB) repositories.AuditRepository {
	return repositories.NewAuditRepository(db)
}

func provideAuditService(auditRepo repositories.AuditRepository) services.AuditServiceInterface {
	return services.NewAuditService(auditRepo)
}

func provideNoteRepo(db *gorm.DB) repositories.NoteRepositoryInterface {
	return repositories.NewNoteRepository(db)
}

func provideNoteService(noteRepo repositories.NoteRepositoryInterface) services.NoteServiceInterface {
	return services.NewNoteService(noteRepo)
}

func provideMemberSummaryService(
	accounts repositories.AccountRepository,
	phases repositories.PhaseRepository,
	subscriptions services.SubscriptionServiceInterface,
	wallets services.WalletServiceInterface,
	cfg *config.Config,
) services.MemberSummaryServiceInterface {
	return services.NewMemberSummaryService(accounts, phases, subscriptions, wallets, cfg.MaxUplineDepth, cfg.Currency)
}
