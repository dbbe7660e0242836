package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/api/handlers"
	"github.com/harvestlink/checkoutapi/internal/config"
	"github.com/harvestlink/checkoutapi/internal/proof"
	"github.com/harvestlink/checkoutapi/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(
	cfg *config.Config,
	submitter *service.Submitter,
	locations *service.LocationService,
	proofStore *proof.Store,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Storefront Checkout API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/users/:id/locations",
				"POST /v1/proof",
				"POST /v1/proof/:id/scan",
				"POST /v1/proof/:id/reference",
				"DELETE /v1/proof/:id",
				"POST /v1/checkout/place-request",
				"POST /v1/checkout/gcash",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/users/:id/locations", handlers.HandleGetUserLocations(locations, logger))

		// Payment-proof attempt lifecycle
		v1.POST("/proof", handlers.HandleCreateProofAttempt(proofStore, logger))
		v1.POST("/proof/:id/scan", handlers.HandleScanProof(proofStore, logger))
		v1.POST("/proof/:id/reference", handlers.HandleManualReference(proofStore, logger))
		v1.DELETE("/proof/:id", handlers.HandleDiscardProof(proofStore, logger))

		// Checkout
		v1.POST("/checkout/place-request", handlers.HandlePlaceRequest(submitter, locations, proofStore, logger))
		v1.POST("/checkout/gcash", handlers.HandleGCashCheckout(submitter, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
