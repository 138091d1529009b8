package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qudmeet/exchange-service/internal/api_gateway/handler"
	"github.com/qudmeet/exchange-service/internal/api_gateway/middleware"
	"github.com/qudmeet/exchange-service/internal/config"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	cfg *config.Config,
	r *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	rateHandler *handler.RateHandler,
	paymentAccountHandler *handler.PaymentAccountHandler,
	notificationHandler *handler.NotificationHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// Stored artifacts (payment proofs, receipts)
	r.Static("/blobs", cfg.Blob.BaseDir)

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Public rate quote
		v1.GET("/exchange-rate", rateHandler.Get)

		// Authenticated user operations
		authed := v1.Group("")
		authed.Use(middleware.JwtAuth(cfg.Auth.JWTSecret))
		{
			transactions := authed.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.ListMine)
				transactions.GET("/:id", transactionHandler.GetByID)
			}

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", notificationHandler.List)
				notifications.POST("/:id/read", notificationHandler.MarkRead)
			}

			// Operator-only operations
			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRole(middleware.RoleOperator))
			{
				admin.GET("/transactions", transactionHandler.ListAll)
				admin.PATCH("/transactions/:id/status", transactionHandler.UpdateStatus)
				admin.POST("/transactions/:id/payment-account", transactionHandler.AssignPaymentAccount)
				admin.POST("/transactions/:id/receiver", transactionHandler.MatchReceiver)

				admin.GET("/exchange-rates", rateHandler.List)
				admin.POST("/exchange-rates", rateHandler.Upsert)

				admin.GET("/payment-accounts", paymentAccountHandler.List)
				admin.POST("/payment-accounts", paymentAccountHandler.Create)
				admin.PATCH("/payment-accounts/:id/active", paymentAccountHandler.SetActive)
			}
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
