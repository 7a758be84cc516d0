package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/readwave/readwave-backend/internal/clients/redis"
	"github.com/readwave/readwave-backend/internal/db"
	"github.com/readwave/readwave-backend/internal/handlers"
	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/middleware"
	"github.com/readwave/readwave-backend/internal/observability"
	"github.com/readwave/readwave-backend/internal/repos"
	"github.com/readwave/readwave-backend/internal/server"
	"github.com/readwave/readwave-backend/internal/services"
	"github.com/readwave/readwave-backend/internal/sse"
	"github.com/readwave/readwave-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "readwave-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
		}()
	}

	// Database
	databaseService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = databaseService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	theDB := databaseService.DB()

	// Redis
	rdb, err := redis.New(log)
	if err != nil {
		log.Warn("Redis init failed; caches and settings fall back to defaults", "error", err)
		rdb = nil
	}

	// Repos
	log.Info("Setting up Repos from main...")
	bookRepo := repos.NewBookRepo(theDB, log)
	segmentRepo := repos.NewSegmentRepo(theDB, log)
	quizQuestionRepo := repos.NewQuizQuestionRepo(theDB, log)
	quizAttemptRepo := repos.NewQuizAttemptRepo(theDB, log)
	userEventRepo := repos.NewUserEventRepo(theDB, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService; segment audio disabled", "error", err)
		bucketService = nil
	}
	contentService := services.NewContentService(theDB, log, bookRepo, segmentRepo)
	quizBankService := services.NewQuizBankService(theDB, log, rdb, quizQuestionRepo)
	progressService := services.NewProgressService(theDB, log, quizAttemptRepo, userEventRepo)
	settingsService := services.NewSettingsService(log, rdb)
	sessionService := services.NewReadingSessionService(
		log,
		sseHub,
		contentService,
		bucketService,
		quizBankService,
		progressService,
		settingsService,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	bookHandler := handlers.NewBookHandler(log, contentService)
	sessionHandler := handlers.NewSessionHandler(log, sessionService)
	settingsHandler := handlers.NewSettingsHandler(log, settingsService, sseHub)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	if utils.GetEnvAsBool("GIN_RELEASE_MODE", logMode == "production", log) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:  authMiddleware,
		BookHandler:     bookHandler,
		SessionHandler:  sessionHandler,
		SettingsHandler: settingsHandler,
		SSEHandler:      sseHandler,
		OtelEnabled:     observability.Enabled(),
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
