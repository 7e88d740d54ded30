package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/exam-portal-service/internal/auth"
	"github.com/SAP-F-2025/exam-portal-service/internal/cache"
	"github.com/SAP-F-2025/exam-portal-service/internal/config"
	"github.com/SAP-F-2025/exam-portal-service/internal/handlers"
	"github.com/SAP-F-2025/exam-portal-service/internal/models"
	"github.com/SAP-F-2025/exam-portal-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-portal-service/internal/services"
	"github.com/SAP-F-2025/exam-portal-service/internal/utils"
	"github.com/SAP-F-2025/exam-portal-service/internal/validator"
	"github.com/SAP-F-2025/exam-portal-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.QuestionOption{},
		&models.Test{},
		&models.TestQuestion{},
		&models.Attempt{},
		&models.AttemptAnswer{},
		&models.ProctoringEvent{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewRepository(db)
	defer repo.Close()

	var cacheService cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, test view caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, logger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	v := validator.New()
	serviceManager := services.NewServiceManager(repo, logger, v, cacheService, publisher)

	authenticator := auth.NewAuthenticator(auth.CasdoorConfig{
		Endpoint:     cfg.CasdoorEndpoint,
		ClientID:     cfg.CasdoorClientID,
		ClientSecret: cfg.CasdoorClientSecret,
		Certificate:  cfg.CasdoorCertificate,
		Organization: cfg.CasdoorOrganization,
		Application:  cfg.CasdoorApplication,
	}, repo.User(), logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, logger)
	handlerManager.SetupRoutes(router, authenticator)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
