package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifestyle-backend/config"
	"lifestyle-backend/database"
	"lifestyle-backend/firebase"
	"lifestyle-backend/routes"
	"lifestyle-backend/supabase"
	"lifestyle-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("APP_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = config.LoadEnv()

	logger := newLogger()
	defer logger.Sync()

	if err := config.ValidateEnv(logger); err != nil {
		logger.Fatal("environment validation failed", zap.Error(err))
	}
	cfg := config.Load()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	catalog, err := config.LoadTenantCatalog()
	if err != nil {
		logger.Fatal("failed to load tenant catalog", zap.Error(err))
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.SeedTenants(db, catalog, logger); err != nil {
		logger.Fatal("failed to seed tenants", zap.Error(err))
	}

	auth, err := supabase.New(supabase.Config{URL: cfg.SupabaseURL, AnonKey: cfg.SupabaseAnonKey})
	if err != nil {
		logger.Fatal("failed to create auth client", zap.Error(err))
	}

	deps := routes.Deps{
		DB:      db,
		Config:  cfg,
		Catalog: catalog,
		Auth:    auth,
		Mailer:  utils.NewMailerFromEnv(logger),
		Logger:  logger,
	}

	// Logo uploads are optional
	if cfg.FirebaseBucket != "" {
		app, err := firebase.Init(context.Background(), logger)
		if err != nil {
			logger.Warn("firebase unavailable, logo uploads disabled", zap.Error(err))
		} else if storageClient, err := firebase.NewStorageClient(app, cfg.FirebaseBucket, logger); err != nil {
			logger.Warn("storage client unavailable, logo uploads disabled", zap.Error(err))
		} else {
			deps.Storage = storageClient
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 4 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(cfg, catalog),
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Admin-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-Tenant"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("root_domain", cfg.RootDomain))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("error closing database connection", zap.Error(err))
		}
	}

	logger.Info("server exited")
}

// allowedOrigins lists the frontend plus every tenant subdomain.
func allowedOrigins(cfg *config.Config, catalog *config.TenantCatalog) []string {
	origins := []string{"https://" + cfg.RootDomain}
	if cfg.FrontendURL != "" {
		origins = append(origins, cfg.FrontendURL)
	}
	for _, slug := range catalog.Slugs() {
		origins = append(origins, "https://"+slug+"."+cfg.RootDomain)
	}
	if cfg.IsDevelopment() {
		origins = append(origins, "http://localhost:3000")
	}
	return origins
}
