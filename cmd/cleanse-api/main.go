package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"org-cleanse/internal/api"
	"org-cleanse/internal/api/handlers"
	"org-cleanse/internal/config"
	"org-cleanse/internal/db"
	"org-cleanse/internal/health"
	"org-cleanse/internal/logger"
	"org-cleanse/internal/matching"
	"org-cleanse/internal/repository"
	"org-cleanse/internal/scheduler"
	"org-cleanse/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load and validate configuration first (before logger)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Logger)

	logger.Info().
		Str("environment", cfg.Logger.Environment).
		Str("log_level", cfg.Logger.Level).
		Msg("configuration loaded successfully")

	logger.Info().Msg("running database migrations")
	if err := db.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	database, err := db.NewDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("database connected successfully")

	// Repositories
	orgRepo := repository.NewOrganizationRepository(database.Pool)
	contactRepo := repository.NewContactRepository(database.Pool)
	formRepo := repository.NewFormRecordRepository(database.Pool)

	// Matching engine with memoization
	engine := matching.NewEngine()
	cache := matching.NewSuggestionCache(engine, cfg.Matching.CacheSize, cfg.Matching.CacheTTL)

	// Services
	orgService := service.NewOrganizationService(orgRepo, contactRepo, formRepo)
	contactService := service.NewContactService(contactRepo)
	formService := service.NewFormRecordService(formRepo)
	suggestService := service.NewSuggestService(orgRepo, contactRepo, formRepo, cache, cfg.Matching)
	importService := service.NewImportService(orgRepo, contactRepo, formRepo)
	exportService := service.NewExportService(orgRepo, contactRepo, formRepo)

	// Handlers
	orgHandler := handlers.NewOrganizationHandler(orgService)
	contactHandler := handlers.NewContactHandler(contactService, orgService)
	formHandler := handlers.NewFormRecordHandler(formService, orgService)
	matchHandler := handlers.NewMatchHandler(suggestService)
	importHandler := handlers.NewImportHandler(importService)
	exportHandler := handlers.NewExportHandler(exportService)

	// Nightly cache warming
	cronScheduler := scheduler.NewScheduler(suggestService, cfg.Matching)
	if err := cronScheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer cronScheduler.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.CORSMiddleware(cfg.CORS))
	router.Use(api.ErrorHandlerMiddleware())

	healthHandler := health.NewHandler(database, cfg.Database.HealthTimeout)
	router.GET("/health", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		orgs := v1.Group("/organizations")
		{
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("/:id", orgHandler.GetOrganization)
			orgs.PUT("/:id", orgHandler.UpdateOrganization)
			orgs.PUT("/:id/classify", orgHandler.ClassifyOrganization)
			orgs.PUT("/:id/validate", orgHandler.ValidateOrganization)
			orgs.PUT("/:id/parent", orgHandler.AssignParent)
			orgs.GET("/:id/parent-matches", matchHandler.ParentMatches)
			orgs.GET("/:id/contact-matches", matchHandler.ContactMatches)
			orgs.GET("/:id/form-matches", matchHandler.FormMatches)
		}

		contacts := v1.Group("/contacts")
		{
			contacts.GET("", contactHandler.ListContacts)
			contacts.POST("", contactHandler.CreateContact)
			contacts.PUT("/:id/assign", contactHandler.AssignContact)
		}

		forms := v1.Group("/form-records")
		{
			forms.GET("", formHandler.ListFormRecords)
			forms.POST("", formHandler.CreateFormRecord)
			forms.PUT("/:id/link", formHandler.LinkFormRecord)
		}

		imports := v1.Group("/import")
		{
			imports.POST("/detect", importHandler.DetectColumns)
			imports.POST("/organizations", importHandler.ImportOrganizations)
			imports.POST("/contacts", importHandler.ImportContacts)
			imports.POST("/form-records", importHandler.ImportFormRecords)
		}

		exports := v1.Group("/export")
		{
			exports.GET("/organizations", exportHandler.ExportOrganizations)
			exports.GET("/contacts", exportHandler.ExportContacts)
			exports.GET("/form-links", exportHandler.ExportFormLinks)
		}

		v1.POST("/matches/auto-assign", matchHandler.AutoAssign)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
