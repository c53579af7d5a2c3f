package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/minhvu/portfolio-hub/adapters/event"
	httpAdapter "github.com/minhvu/portfolio-hub/adapters/http"
	"github.com/minhvu/portfolio-hub/adapters/media_storage"
	"github.com/minhvu/portfolio-hub/adapters/persistence"
	"github.com/minhvu/portfolio-hub/internal/application/service"
	authUC "github.com/minhvu/portfolio-hub/internal/application/usecase/auth"
	documentUC "github.com/minhvu/portfolio-hub/internal/application/usecase/document"
	"github.com/minhvu/portfolio-hub/internal/config"
	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/internal/metrics"
	"github.com/minhvu/portfolio-hub/internal/render"
	"github.com/minhvu/portfolio-hub/pkg/auth"
	"github.com/minhvu/portfolio-hub/pkg/logger"
	"github.com/minhvu/portfolio-hub/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting Portfolio Hub API server...")

	tracerProvider, err := tracing.NewTracerProvider(cfg, appLogger, "portfolio-hub-api")
	if err != nil {
		appLogger.Warn("Tracing disabled", zap.Error(err))
	} else {
		defer tracerProvider.Shutdown(context.Background())
	}

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	durableStore := persistence.NewRedisLocalStore(redisClient)
	ephemeralStore := persistence.NewMemoryLocalStore()

	// Remote store is optional: no DSN means local-only operation.
	var remoteStore portfolio.RemoteStore
	if cfg.DB.DSN != "" {
		dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Remote document store unreachable, running local-only", zap.Error(err))
			remoteStore = persistence.NewUnavailableDocumentStore()
		} else {
			defer dbPool.Close()
			remoteStore = persistence.NewPostgresDocumentStore(dbPool, cfg.DB.DocumentID, appLogger)
		}
	} else {
		appLogger.Info("No database configured, running local-only")
		remoteStore = persistence.NewUnavailableDocumentStore()
	}

	var publisher portfolio.ChangePublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := event.NewKafkaChangePublisher(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Kafka unavailable, change events disabled", zap.Error(err))
		} else {
			defer kafkaPublisher.Close()
			publisher = kafkaPublisher
		}
	}

	var uploader service.Uploader
	if cfg.Cloudinary.CloudName != "" {
		uploader, err = media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Cloudinary unavailable, offsite backup copies disabled", zap.Error(err))
		}
	}

	manager := documentUC.NewManager(durableStore, remoteStore, publisher, uploader, cfg.App.Origin, appLogger)
	if _, err := manager.Load(context.Background()); err != nil {
		appLogger.Fatal("Cannot load portfolio document", err)
	}

	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret)
	sessionUseCase := authUC.NewSessionUseCase(durableStore, ephemeralStore, authUC.Credentials{
		Username:     cfg.Auth.AdminUsername,
		PasswordHash: cfg.Auth.AdminPasswordHash,
	}, jwtSvc, appLogger)

	renderCache := render.NewCache(durableStore)

	// HTTP handlers
	authHandler := httpAdapter.NewAuthHandler(sessionUseCase)
	profileHandler := httpAdapter.NewProfileHandler(manager)
	entriesHandler := httpAdapter.NewEntriesHandler(manager)
	dataHandler := httpAdapter.NewDataHandler(manager)
	portfolioHandler := httpAdapter.NewPortfolioHandler(manager, renderCache, appLogger)

	authMiddleware := httpAdapter.AuthMiddleware(sessionUseCase)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpAdapter.CorrelationMiddleware())
	router.Use(httpAdapter.RequestLogMiddleware(appLogger))
	router.Use(metrics.GinMiddleware())

	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		public := api.Group("/")
		{
			public.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "UP"}) })
			public.GET("/portfolio", portfolioHandler.GetDocument)
			public.GET("/portfolio/sections/:section", portfolioHandler.GetSection)
		}

		admin := api.Group("/admin")
		{
			adminAuth := admin.Group("/auth")
			adminAuth.POST("/login", authHandler.Login)

			adminPrivate := admin.Group("/")
			adminPrivate.Use(authMiddleware)
			{
				adminPrivate.POST("/auth/logout", authHandler.Logout)
				adminPrivate.GET("/auth/session", authHandler.Session)

				adminPrivate.GET("/profile", profileHandler.Get)
				adminPrivate.PUT("/profile", profileHandler.Update)

				collections := adminPrivate.Group("/collections/:collection")
				{
					collections.POST("", entriesHandler.Create)
					collections.PUT("/:id", entriesHandler.Update)
					collections.DELETE("/:id", entriesHandler.Delete)
				}

				adminPrivate.GET("/data/export", dataHandler.Export)
				adminPrivate.POST("/data/import", dataHandler.Import)
				adminPrivate.POST("/data/clear", dataHandler.Clear)
				adminPrivate.GET("/data/backups", dataHandler.ListBackups)
				adminPrivate.POST("/data/backups/restore", dataHandler.RestoreBackup)
				adminPrivate.GET("/data/status", dataHandler.Status)
			}
		}
	}

	appLogger.Info("Server running", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		appLogger.Fatal("Cannot run server", err)
	}
}
