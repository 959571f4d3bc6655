package catalog_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/cache"
)

var Module = fx.Provide(
	provideProductRepo, provideProductService,
	providePlanRepo, providePlanService,
	provideSiteContentRepo, provideSiteContentService,
	provideEmailTemplateRepo, provideEmailTemplateService,
)

func provideProductRepo(db *gorm.DB) repositories.ProductRepository {
	return repositories.NewProductRepository(db)
}

func provideProductService(productRepo repositories.ProductRepository) services.ProductServiceInterface {
	return services.NewProductService(productRepo)
}

func providePlanRepo(db *gorm.DB) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db)
}

func providePlanService(planRepo repositories.IPlanRepository) services.PlanServiceInterface {
	return services.NewPlanService(planRepo)
}

func provideSiteContentRepo(db *gorm.DB) repositories.SiteContentRepository {
	return repositories.NewSiteContentRepository(db)
}

func provideSiteContentService(repo repositories.SiteContentRepository, store cache.Store) services.SiteContentServiceInterface {
	return services.NewSiteContentService(repo, store)
}

func provideEmailTemplateRepo(db *gorm.DB) repositories.EmailTemplateRepository {
	return repositories.NewEmailTemplateRepository(db)
}

func provideEmailTemplateService(repo repositories.EmailTemplateRepository, mail services.IMailService) services.EmailTemplateServiceInterface {
	return services.NewEmailTemplateService(repo, mail)
}
