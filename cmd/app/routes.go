package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"mlmadmin/internal/api/controllers"
	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/middleware"
	"mlmadmin/pkg/utils"
)

type RouterDeps struct {
	fx.In

	Tokens *utils.TokenIssuer
	CSRF   *middleware.CSRFTokens
	Audit  services.AuditServiceInterface

	Accounts      *controllers.AccountController
	Products      *controllers.ProductController
	Plans         *controllers.PlanController
	Content       *controllers.ContentController
	Subscriptions *controllers.SubscriptionController
	Wallets       *controllers.WalletController
	Commissions   *controllers.CommissionController
	Dashboard     *controllers.DashboardController
	Notes         *controllers.NoteController
	AuditLogs     *controllers.AuditController
}

func RegisterRoutes(r *gin.Engine, d RouterDeps) {
	r.GET("/healthz", func(c *gin.Context) {
		utils.RespondSuccess(c, nil, "ok")
	})

	// ---------- Public ----------
	accountGroup := r.Group("/accounts")
	accountGroup.POST("/register", d.Accounts.Register)
	accountGroup.POST("/login", d.Accounts.Login)
	accountGroup.POST("/forgot-password", d.Accounts.ForgotPassword)
	accountGroup.POST("/reset-password", d.Accounts.ResetPassword)

	r.GET("/products", d.Products.ListActiveProducts)
	r.GET("/plans", d.Plans.ListActivePlans)
	r.GET("/content", d.Content.PublicContent)
	r.GET("/phases", d.Commissions.ListPhases)

	// ---------- Member ----------
	member := r.Group("/")
	member.Use(middleware.JWTAuthMiddleware(d.Tokens), middleware.CSRFMiddleware(d.CSRF))
	member.GET("/csrf-token", d.Accounts.CSRFToken)
	member.GET("/accounts/me", d.Accounts.Me)
	member.GET("/accounts/me/summary", d.Accounts.MySummary)

	member.POST("/subscriptions", d.Subscriptions.Subscribe)
	member.GET("/subscriptions/current", d.Subscriptions.GetCurrent)
	member.POST("/subscriptions/:id/cancel", d.Subscriptions.Cancel)

	member.GET("/wallet", d.Wallets.MyWallet)
	member.GET("/wallet/transactions", d.Wallets.MyTransactions)
	member.GET("/commissions", d.Commissions.MyCommissions)

	// ---------- Admin ----------
	admin := r.Group("/admin")
	admin.Use(
		middleware.JWTAuthMiddleware(d.Tokens),
		middleware.RoleMiddleware(db_models.RoleAdmin),
		middleware.CSRFMiddleware(d.CSRF),
	)
	admin.GET("/dashboard", d.Dashboard.GetDashboard)
	admin.GET("/audit-logs", d.AuditLogs.ListAuditLogs)

	members := admin.Group("/members", controllers.AuditTrail(d.Audit, "member"))
	members.GET("", d.Accounts.ListMembers)
	members.GET("/:id", d.Accounts.GetMember)
	members.GET("/:id/summary", d.Accounts.MemberSummary)
	members.GET("/:id/upline", d.Commissions.Upline)
	members.PUT("/:id/phase", d.Accounts.SetMemberPhase)
	members.PUT("/:id/status", d.Accounts.SetMemberStatus)

	wallets := admin.Group("/members/:id/wallet", controllers.AuditTrail(d.Audit, "wallet"))
	wallets.GET("", d.Wallets.MemberWallet)
	wallets.GET("/transactions", d.Wallets.MemberTransactions)
	wallets.POST("/adjust", d.Wallets.Adjust)

	products := admin.Group("/products", controllers.AuditTrail(d.Audit, "product"))
	products.GET("", d.Products.ListProducts)
	products.POST("", d.Products.CreateProduct)
	products.GET("/:id", d.Products.GetProduct)
	products.PUT("/:id", d.Products.UpdateProduct)
	products.DELETE("/:id", d.Products.DeleteProduct)

	plans := admin.Group("/plans", controllers.AuditTrail(d.Audit, "plan"))
	plans.GET("", d.Plans.ListPlans)
	plans.POST("", d.Plans.CreatePlan)
	plans.GET("/:id", d.Plans.GetPlan)
	plans.PUT("/:id", d.Plans.UpdatePlan)
	plans.PUT("/:id/active", d.Plans.SetPlanActive)
	plans.DELETE("/:id", d.Plans.DeletePlan)

	content := admin.Group("/content", controllers.AuditTrail(d.Audit, "content"))
	content.GET("/settings", d.Content.GetSettings)
	content.PUT("/settings", d.Content.UpdateSettings)
	content.GET("/blocks", d.Content.ListBlocks)
	content.PUT("/blocks/:key", d.Content.UpsertBlock)
	content.DELETE("/blocks/:key", d.Content.DeleteBlock)
	content.PUT("/block-order", d.Content.ReorderBlocks)

	templates := admin.Group("/email-templates", controllers.AuditTrail(d.Audit, "email_template"))
	templates.GET("", d.Content.ListTemplates)
	templates.GET("/:key", d.Content.GetTemplate)
	templates.PUT("/:key", d.Content.UpsertTemplate)
	templates.DELETE("/:key", d.Content.DeleteTemplate)
	templates.POST("/:key/preview", d.Content.PreviewTemplate)
	templates.POST("/:key/test", d.Content.SendTestTemplate)

	subscriptions := admin.Group("/subscriptions", controllers.AuditTrail(d.Audit, "subscription"))
	subscriptions.GET("", d.Subscriptions.ListSubscriptions)
	subscriptions.POST("/renewals/run", d.Subscriptions.RunRenewals)

	commissions := admin.Group("", controllers.AuditTrail(d.Audit, "commission"))
	commissions.GET("/commissions", d.Commissions.ListCommissions)
	commissions.POST("/sales", d.Commissions.RecordSale)
	commissions.PUT("/phases/:level", d.Commissions.UpdatePhase)

	notes := admin.Group("/notes", controllers.AuditTrail(d.Audit, "note"))
	notes.GET("", d.Notes.ListNotes)
	notes.POST("", d.Notes.AddNote)
	notes.PUT("/:id", d.Notes.UpdateNote)
	notes.DELETE("/:id", d.Notes.DeleteNote)
}
