package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/readwave/readwave-backend/internal/handlers"
	"github.com/readwave/readwave-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware  *middleware.AuthMiddleware
	BookHandler     *handlers.BookHandler
	SessionHandler  *handlers.SessionHandler
	SettingsHandler *handlers.SettingsHandler
	SSEHandler      *handlers.SSEHandler
	OtelEnabled     bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.OtelEnabled {
		router.Use(otelgin.Middleware("readwave-backend"))
	}

	// Cors
	allowOrigins := []string{
		"http://localhost:80",
		"http://localhost:3000",
		"http://localhost:5174",
	}
	if extra := os.Getenv("CORS_ALLOW_ORIGINS"); extra != "" {
		allowOrigins = append(allowOrigins, strings.Split(extra, ",")...)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Books
	api.GET("/books", cfg.BookHandler.ListBooks)
	api.GET("/books/:id", cfg.BookHandler.GetBook)
	api.POST("/books/:id/session", cfg.SessionHandler.StartSession)
	// Session
	api.GET("/session/state", cfg.SessionHandler.GetState)
	api.POST("/session/navigate", cfg.SessionHandler.Navigate)
	api.POST("/session/segment", cfg.SessionHandler.JumpToSegment)
	api.POST("/session/answer", cfg.SessionHandler.SubmitAnswer)
	api.POST("/session/tick", cfg.SessionHandler.Tick)
	api.POST("/session/audio/play", cfg.SessionHandler.PlayAudio)
	api.POST("/session/audio/pause", cfg.SessionHandler.PauseAudio)
	api.DELETE("/session", cfg.SessionHandler.EndSession)
	// SSE
	api.GET("/session/events", cfg.SSEHandler.Stream)
	// Settings
	api.GET("/settings", cfg.SettingsHandler.GetSettings)
	api.PUT("/settings", cfg.SettingsHandler.UpdateSettings)

	return router
}
