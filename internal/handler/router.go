package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"telemart/storecore/internal/config"
	"telemart/storecore/internal/handler/middleware"
	jwtpkg "telemart/storecore/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	userHandler *UserHandler,
	inviteHandler *InviteHandler,
	referralHandler *ReferralHandler,
	productHandler *ProductHandler,
	orderHandler *OrderHandler,
	fulfillmentHandler *FulfillmentHandler,
	webhookHandler *WebhookHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Storefront API, called by the chat front-end with a service token.
	api := r.Group("/api/v1")
	api.Use(middleware.TokenAuth(jwtManager, jwtpkg.TokenTypeService))
	{
		api.POST("/users", userHandler.Create)
		api.GET("/users/:user_id", userHandler.Get)
		api.POST("/users/:user_id/vip", userHandler.GrantVIP)
		api.POST("/users/:user_id/coins", userHandler.AdjustCoins)
		api.GET("/users/:user_id/invites", inviteHandler.ListByOwner)
		api.GET("/users/:user_id/orders", orderHandler.ListByUser)

		api.POST("/invites", inviteHandler.Issue)
		api.POST("/invites/redeem", inviteHandler.Redeem)

		api.GET("/referrals/:user_id/ancestors", referralHandler.Ancestors)
		api.GET("/referrals/:user_id/descendants", referralHandler.Descendants)

		api.GET("/products", productHandler.ListActive)
		api.POST("/products", productHandler.Create)

		api.POST("/orders", orderHandler.Create)
		api.GET("/orders/:order_id", orderHandler.Get)
		api.GET("/orders/:order_id/history", orderHandler.History)
		api.POST("/orders/:order_id/refund", orderHandler.Refund)
		api.GET("/orders/:order_id/fulfillment", fulfillmentHandler.GetByOrder)

		api.POST("/fulfillments/:user_order_id/complete", fulfillmentHandler.Complete)
		api.POST("/fulfillments/:user_order_id/cancel", fulfillmentHandler.Cancel)
	}

	// Payment provider callbacks, authenticated with a webhook token.
	webhooks := r.Group("/webhooks")
	webhooks.Use(middleware.TokenAuth(jwtManager, jwtpkg.TokenTypeWebhook))
	{
		webhooks.POST("/payment", webhookHandler.HandlePayment)
	}

	return r
}
