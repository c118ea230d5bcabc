// Package api contains the HTTP handlers and routing for the payment service.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes and middleware.
func SetupRouter(handler *Handler, ginMode string) *gin.Engine {
	// Set Gin mode
	gin.SetMode(ginMode)

	// Create router with default middleware (logger and recovery)
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())

	// The webhook endpoint accepts only POST; anything else is 405.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	// Health check endpoint (no auth required)
	router.GET("/health", handler.Health)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		payments := v1.Group("/payments")
		{
			payments.POST("/card", handler.CreateCardPayment)
			payments.POST("/pix", handler.CreatePixPayment)
			payments.POST("/boleto", handler.CreateBoletoPayment)
		}

		payouts := v1.Group("/payouts")
		{
			payouts.POST("/quotes", handler.CreateQuote)
			payouts.GET("/recipients/requirements", handler.GetRecipientRequirements)
			payouts.POST("/recipients", handler.CreateRecipient)
			payouts.POST("/transfers", handler.CreateTransfer)
			payouts.POST("/transfers/:id/fund", handler.FundTransfer)
			payouts.GET("/transfers/:id", handler.GetTransfer)
			payouts.POST("/transfers/:id/cancel", handler.CancelTransfer)
		}
	}

	// Webhook endpoint. Called by providers, so no JWT; security is the
	// HMAC signature over the raw body.
	router.POST("/webhooks/:provider", handler.HandleWebhook)

	return router
}
