package handlers

import (
	"context"

	"github.com/datingassistent/payments/internal/usecase"
)

// OrderFacade encapsulates order creation exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, input usecase.CreateOrderInput) (*usecase.CreateOrderResult, error)
}

// WebhookFacade reconciles provider notifications.
type WebhookFacade interface {
	ProcessWebhook(ctx context.Context, transactionID string) (*usecase.WebhookResult, error)
}

// LinkFacade resolves paid orders to user accounts.
type LinkFacade interface {
	LinkFromOrder(ctx context.Context, orderID string) (*usecase.LinkResult, error)
}

// PaymentsFacade aggregates the full set of operations used across handlers.
type PaymentsFacade interface {
	OrderFacade
	WebhookFacade
	LinkFacade
}
