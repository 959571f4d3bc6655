package wallet_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"mlmadmin/internal/config"
	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
)

var Module = fx.Provide(
	provideWalletRepo, provideWalletService,
	providePhaseRepo, provideCommissionRepo, provideCommissionService,
)

func provideWalletRepo(db *gorm.DB) repositories.WalletRepository {
	return repositories.NewWalletRepository(db)
}

func provideWalletService(walletRepo repositories.WalletRepository, accountRepo repositories.AccountRepository, cfg *config.Config) services.WalletServiceInterface {
	return services.NewWalletService(walletRepo, accountRepo, cfg.Currency)
}

func providePhaseRepo(db *gorm.DB) repositories.PhaseRepository {
	return repositories.NewPhaseRepository(db)
}

func provideCommissionRepo(db *gorm.DB) repositories.CommissionRepository {
	return repositories.NewCommissionRepository(db)
}

func provideCommissionService(
	accountRepo repositories.AccountRepository,
	phaseRepo repositories.PhaseRepository,
	commissionRepo repositories.CommissionRepository,
	cfg *config.Config,
) services.CommissionServiceInterface {
	return services.NewCommissionService(accountRepo, phaseRepo, commissionRepo, cfg.MaxUplineDepth)
}
