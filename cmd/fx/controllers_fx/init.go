package controllers_fx

import (
	"go.uber.org/fx"

	"mlmadmin/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewProductController),
	fx.Provide(controllers.NewPlanController),
	fx.Provide(controllers.NewContentController),
	fx.Provide(controllers.NewSubscriptionController),
	fx.Provide(controllers.NewWalletController),
	fx.Provide(controllers.NewCommissionController),
	fx.Provide(controllers.NewDashboardController),
	fx.Provide(controllers.NewNoteController),
	fx.Provide(controllers.NewAuditController))
