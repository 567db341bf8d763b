package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/datingassistent/payments/internal/adapter/notify"
	"github.com/datingassistent/payments/internal/adapter/psp"
	"github.com/datingassistent/payments/internal/domain/model"
	testhelpers "github.com/datingassistent/payments/internal/test"
	"github.com/datingassistent/payments/internal/usecase"
)

type checkoutProviderStub struct{}

func (checkoutProviderStub) CreateCheckout(_ context.Context, req psp.CheckoutRequest) (*psp.Checkout, error) {
	return &psp.Checkout{TransactionID: "tx-" + req.OrderID, PaymentURL: "https://psp.example/pay/" + req.OrderID}, nil
}

type transactionProviderStub struct {
	orderID string
	status  string
}

func (s transactionProviderStub) FetchTransaction(_ context.Context, transactionID string) (*psp.Transaction, error) {
	return &psp.Transaction{TransactionID: transactionID, OrderID: s.orderID, Status: s.status}, nil
}

type hasherStub struct{}

func (hasherStub) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (hasherStub) Compare(hash string, password string) error { return nil }

func newFacade() (*PaymentFacade, *testhelpers.OrderRepositoryStub, *testhelpers.UserRepositoryStub, *testhelpers.OutboxRepositoryStub) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	orderRepo := testhelpers.NewOrderRepositoryStub()
	userRepo := testhelpers.NewUserRepositoryStub()
	outboxRepo := &testhelpers.OutboxRepositoryStub{}

	ordersUC := usecase.NewOrderUseCase(orderRepo, &testhelpers.CouponRepositoryStub{}, checkoutProviderStub{}, "EUR", "https://pay.example.com", logger)
	reconcileUC := usecase.NewReconcileUseCase(orderRepo, transactionProviderStub{orderID: "order-1", status: "paid"}, logger)
	linkUC := usecase.NewLinkUseCase(orderRepo, userRepo, notify.NopNotifier{}, hasherStub{}, logger)

	facade := NewPaymentFacade(ordersUC, reconcileUC, linkUC, outboxRepo)
	return facade, orderRepo, userRepo, outboxRepo
}

func TestPaymentFacadeCreateOrder(t *testing.T) {
	facade, orders, _, _ := newFacade()

	result, err := facade.CreateOrder(context.Background(), usecase.CreateOrderInput{
		PackageType:   "premium",
		BillingPeriod: "monthly",
		Amount:        2999,
		UserID:        "temp",
		UserEmail:     testhelpers.RandomEmail(),
	})
	if err != nil {
		t.Fatalf("create order returned error: %v", err)
	}
	if orders.Get(result.Order.ID) == nil {
		t.Fatal("order not persisted")
	}
	if result.PaymentURL == "" {
		t.Fatal("expected payment url")
	}
}

func TestPaymentFacadeWebhookAndLink(t *testing.T) {
	facade, orders, users, _ := newFacade()
	orders.Put(&model.Order{ID: "order-1", Status: model.OrderStatusInitialized, CustomerEmail: testhelpers.RandomEmail()})

	webhook, err := facade.ProcessWebhook(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("process webhook returned error: %v", err)
	}
	if webhook.Outcome != model.ApplyOutcomeApplied {
		t.Fatalf("expected applied, got %s", webhook.Outcome)
	}

	link, err := facade.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("link returned error: %v", err)
	}
	if !link.CreatedUser || link.User == nil {
		t.Fatalf("expected a created account, got %+v", link)
	}
	if _, err := users.GetByID(context.Background(), link.User.ID); err != nil {
		t.Fatalf("account not stored: %v", err)
	}
}

func TestPaymentFacadeOutboxDelegation(t *testing.T) {
	facade, _, _, outbox := newFacade()
	outbox.Pending = []model.ConfirmationEvent{{ID: 5, OrderID: "order-1", EventType: model.EventPaymentConfirmed}}

	events, err := facade.ConfirmationsForDelivery(context.Background(), 10)
	if err != nil {
		t.Fatalf("confirmations returned error: %v", err)
	}
	if len(events) != 1 || events[0].ID != 5 {
		t.Fatalf("unexpected events %v", events)
	}

	if err := facade.MarkConfirmationDelivered(context.Background(), 5); err != nil {
		t.Fatalf("mark delivered returned error: %v", err)
	}
	if err := facade.MarkConfirmationFailed(context.Background(), 6); err != nil {
		t.Fatalf("mark failed returned error: %v", err)
	}
	if len(outbox.Delivered) != 1 || outbox.Delivered[0] != 5 {
		t.Fatalf("unexpected delivered %v", outbox.Delivered)
	}
	if len(outbox.Failed) != 1 || outbox.Failed[0] != 6 {
		t.Fatalf("unexpected failed %v", outbox.Failed)
	}
}
