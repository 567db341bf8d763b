package app

import (
	"context"

	"github.com/datingassistent/payments/internal/domain/model"
	"github.com/datingassistent/payments/internal/domain/repository"
	"github.com/datingassistent/payments/internal/usecase"
)

// PaymentFacade aggregates the payment use cases behind a single surface
// shared by HTTP handlers and the outbox worker.
type PaymentFacade struct {
	orders    *usecase.OrderUseCase
	reconcile *usecase.ReconcileUseCase
	link      *usecase.LinkUseCase
	outbox    repository.OutboxRepository
}

// NewPaymentFacade constructs PaymentFacade.
func NewPaymentFacade(
	orders *usecase.OrderUseCase,
	reconcile *usecase.ReconcileUseCase,
	link *usecase.LinkUseCase,
	outbox repository.OutboxRepository,
) *PaymentFacade {
	return &PaymentFacade{orders: orders, reconcile: reconcile, link: link, outbox: outbox}
}

func (f *PaymentFacade) CreateOrder(ctx context.Context, input usecase.CreateOrderInput) (*usecase.CreateOrderResult, error) {
	return f.orders.Create(ctx, input)
}

func (f *PaymentFacade) ProcessWebhook(ctx context.Context, transactionID string) (*usecase.WebhookResult, error) {
	return f.reconcile.ProcessWebhook(ctx, transactionID)
}

func (f *PaymentFacade) LinkFromOrder(ctx context.Context, orderID string) (*usecase.LinkResult, error) {
	return f.link.LinkFromOrder(ctx, orderID)
}

func (f *PaymentFacade) ConfirmationsForDelivery(ctx context.Context, limit int) ([]model.ConfirmationEvent, error) {
	return f.outbox.SelectBatchForDelivery(ctx, limit)
}

func (f *PaymentFacade) MarkConfirmationDelivered(ctx context.Context, eventID int64) error {
	return f.outbox.MarkDelivered(ctx, eventID)
}

func (f *PaymentFacade) MarkConfirmationFailed(ctx context.Context, eventID int64) error {
	return f.outbox.MarkFailed(ctx, eventID)
}
