package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"mlmadmin/internal/config"
	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
	mem "mlmadmin/pkg/memcache"
	"mlmadmin/pkg/middleware"
	"mlmadmin/pkg/utils"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo, provideTokenIssuer, provideCSRFTokens)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideTokenIssuer(cfg *config.Config) *utils.TokenIssuer {
	return utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
}

func provideCSRFTokens(cfg *config.Config) *middleware.CSRFTokens {
	return middleware.NewCSRFTokens(cfg.CSRFSecret)
}

func provideAccountService(
	accountRepo repositories.AccountRepository,
	phaseRepo repositories.PhaseRepository,
	tokens *utils.TokenIssuer,
	resetTokens mem.ResetTokenStore,
	mailService services.IMailService,
) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, phaseRepo, tokens, resetTokens, mailService)
}
