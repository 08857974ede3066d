package http

import (
	"github.com/gin-gonic/gin"

	"github.com/pricelens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		markets := v1.Group("/markets")
		{
			markets.GET("", handler.ListMarkets)
			markets.POST("/:market/process", handler.ProcessMarket)
			markets.GET("/:market/products", handler.GetProducts)
			markets.GET("/:market/reports/summary", handler.GetSummaryReport)
			markets.GET("/:market/reports/validation", handler.GetValidationReport)
		}
	}

	return router
}
