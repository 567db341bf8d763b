package test

import (
	"context"
	"sync"

	"github.com/datingassistent/payments/internal/domain/model"
	"github.com/datingassistent/payments/internal/usecase"
)

// WorkerFacadeStub satisfies the outbox worker's facade dependency.
type WorkerFacadeStub struct {
	sync.Mutex

	Batches [][]model.ConfirmationEvent

	LinkFn func(context.Context, string) (*usecase.LinkResult, error)

	Linked    []string
	Delivered []int64
	Failed    []int64
}

func (s *WorkerFacadeStub) ConfirmationsForDelivery(ctx context.Context, limit int) ([]model.ConfirmationEvent, error) {
	s.Lock()
	defer s.Unlock()
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	return batch, nil
}

func (s *WorkerFacadeStub) LinkFromOrder(ctx context.Context, orderID string) (*usecase.LinkResult, error) {
	s.Lock()
	s.Linked = append(s.Linked, orderID)
	s.Unlock()
	if s.LinkFn != nil {
		return s.LinkFn(ctx, orderID)
	}
	return &usecase.LinkResult{User: &model.User{ID: 1}}, nil
}

func (s *WorkerFacadeStub) MarkConfirmationDelivered(ctx context.Context, eventID int64) error {
	s.Lock()
	defer s.Unlock()
	s.Delivered = append(s.Delivered, eventID)
	return nil
}

func (s *WorkerFacadeStub) MarkConfirmationFailed(ctx context.Context, eventID int64) error {
	s.Lock()
	defer s.Unlock()
	s.Failed = append(s.Failed, eventID)
	return nil
}

// OrderFacadeStub configures handler tests for order creation.
type OrderFacadeStub struct {
	CreateFn func(context.Context, usecase.CreateOrderInput) (*usecase.CreateOrderResult, error)
}

func (s OrderFacadeStub) CreateOrder(ctx context.Context, input usecase.CreateOrderInput) (*usecase.CreateOrderResult, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, input)
	}
	return &usecase.CreateOrderResult{
		Order:      &model.Order{ID: "order-1", Status: model.OrderStatusInitialized},
		PaymentURL: "https://psp.example/pay/order-1",
	}, nil
}

// WebhookFacadeStub configures handler tests for webhook processing.
type WebhookFacadeStub struct {
	ProcessFn func(context.Context, string) (*usecase.WebhookResult, error)
}

func (s WebhookFacadeStub) ProcessWebhook(ctx context.Context, transactionID string) (*usecase.WebhookResult, error) {
	if s.ProcessFn != nil {
		return s.ProcessFn(ctx, transactionID)
	}
	return &usecase.WebhookResult{OrderID: "order-1", Status: model.OrderStatusPaid, Outcome: model.ApplyOutcomeApplied}, nil
}

// LinkFacadeStub configures handler tests for account linking.
type LinkFacadeStub struct {
	LinkFn func(context.Context, string) (*usecase.LinkResult, error)
}

func (s LinkFacadeStub) LinkFromOrder(ctx context.Context, orderID string) (*usecase.LinkResult, error) {
	if s.LinkFn != nil {
		return s.LinkFn(ctx, orderID)
	}
	return &usecase.LinkResult{User: &model.User{ID: 1, Email: "user@example.com"}}, nil
}

// PaymentsFacadeStub aggregates the stubs for router level tests.
type PaymentsFacadeStub struct {
	OrderFacadeStub
	WebhookFacadeStub
	LinkFacadeStub
}
