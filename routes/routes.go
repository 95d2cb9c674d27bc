package routes

import (
	"time"

	"lifestyle-backend/config"
	"lifestyle-backend/firebase"
	"lifestyle-backend/handlers"
	"lifestyle-backend/metrics"
	"lifestyle-backend/middleware"
	"lifestyle-backend/services"
	"lifestyle-backend/supabase"
	"lifestyle-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. Storage and Mailer may be nil,
// which disables logo uploads and claim receipts.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Catalog *config.TenantCatalog
	Auth    supabase.AuthClient
	Storage firebase.StorageClient
	Mailer  *utils.Mailer
	Logger  *zap.Logger
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	logger := deps.Logger

	r.Use(middleware.TenantMiddleware(deps.Catalog))
	r.Use(metrics.Middleware())
	r.Use(middleware.RequestLogger(logger))

	// Services
	claims := services.NewClaimService(deps.DB, logger)
	wallets := services.NewWalletService(deps.DB, logger)
	onboarding := services.NewOnboardingService(deps.DB, logger)
	admin := services.NewAdminService(deps.DB, deps.Storage, logger)

	// Handlers
	authHandler := &handlers.AuthHandler{Auth: deps.Auth, Onboarding: onboarding, Config: deps.Config, Logger: logger}
	claimHandler := &handlers.ClaimHandler{Claims: claims, Catalog: deps.Catalog, Mailer: deps.Mailer, Logger: logger}
	walletHandler := &handlers.WalletHandler{Wallets: wallets, Logger: logger}
	onboardingHandler := &handlers.OnboardingHandler{Onboarding: onboarding, Config: deps.Config, Logger: logger}
	tenantHandler := &handlers.TenantHandler{Catalog: deps.Catalog, Onboarding: onboarding, Logger: logger}
	adminHandler := &handlers.AdminHandler{Admin: admin, Logger: logger}

	claimLimiter := middleware.NewRateLimiter(deps.Config.ClaimRatePerMin, time.Minute)
	authLimiter := middleware.NewRateLimiter(5, time.Minute)

	// Sign-in flow
	r.GET("/auth/callback", authHandler.Callback)
	r.GET("/signin", middleware.OptionalSessionMiddleware(deps.Config.SupabaseJWTSecret), authHandler.SignIn)

	api := r.Group("/api")
	{
		api.POST("/auth/magic-link", authLimiter.Middleware(), authHandler.MagicLink)
		api.POST("/auth/signout", authHandler.SignOut)
		api.GET("/debug-auth", authHandler.DebugAuth)

		api.GET("/tenant", tenantHandler.GetTenant)
		api.GET("/tenants", onboardingHandler.ListTenants)
	}

	// Signed-in users
	session := api.Group("")
	session.Use(middleware.SessionMiddleware(deps.Config.SupabaseJWTSecret))
	{
		session.POST("/claim", claimLimiter.Middleware(), claimHandler.Claim)
		session.GET("/wallet", walletHandler.GetWallet)
		session.GET("/profile", onboardingHandler.GetProfile)
		session.POST("/onboarding", onboardingHandler.ChoosePrimaryTenant)
	}

	// Operators
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminKeyMiddleware(deps.Config.AdminAPIKeyHash))
	{
		adminGroup.POST("/merchants", adminHandler.CreateMerchant)
		adminGroup.POST("/earn-tokens", adminHandler.MintEarnToken)
		adminGroup.PUT("/tenants/:slug/logo", adminHandler.UploadTenantLogo)
		adminGroup.POST("/tenants/:slug/logo-url", adminHandler.ImportTenantLogo)
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
