package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/datingassistent/payments/internal/config"
	"github.com/datingassistent/payments/internal/server/http/handlers"
	"github.com/datingassistent/payments/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.PaymentsFacade, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	paymentHandler := handlers.NewPaymentHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade)
	linkHandler := handlers.NewLinkHandler(facade)

	payments := engine.Group("/payments")
	payments.POST("", paymentHandler.Create)

	webhook := payments.Group("/webhook")
	webhook.GET("", webhookHandler.Health)
	webhook.POST("", middleware.WebhookAuth(cfg, logger), webhookHandler.Notify)

	accounts := engine.Group("/accounts")
	accounts.POST("/link-from-order", linkHandler.LinkFromOrder)

	return engine
}
