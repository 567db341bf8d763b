package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/datingassistent/payments/internal/adapter/psp"
	"github.com/datingassistent/payments/internal/domain/model"
	"github.com/datingassistent/payments/internal/domain/repository"
)

// TempUserID is the placeholder callers send when no account exists yet.
const TempUserID = "temp"

const defaultPaymentProvider = "psp"

// CheckoutProvider is the subset of the provider client used during order
// creation.
type CheckoutProvider interface {
	CreateCheckout(ctx context.Context, req psp.CheckoutRequest) (*psp.Checkout, error)
}

// CreateOrderInput carries the order creation request.
type CreateOrderInput struct {
	PackageType    string
	BillingPeriod  string
	Amount         int64
	UserID         string
	UserEmail      string
	CouponCode     string
	CustomerName   string
	CustomerLocale string
}

// CreateOrderResult is the outcome of a successful order creation.
type CreateOrderResult struct {
	Order      *model.Order
	PaymentURL string
}

// OrderUseCase implements order creation: the zero-amount fast path and the
// provider-hosted checkout path.
type OrderUseCase struct {
	orders   repository.OrderRepository
	coupons  repository.CouponRepository
	checkout CheckoutProvider
	logger   *slog.Logger

	currency      string
	publicBaseURL string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	coupons repository.CouponRepository,
	checkout CheckoutProvider,
	currency string,
	publicBaseURL string,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:        orders,
		coupons:       coupons,
		checkout:      checkout,
		logger:        logger,
		currency:      currency,
		publicBaseURL: publicBaseURL,
	}
}

// Create validates the request and produces a new order plus the URL the
// customer should be sent to. Zero-amount orders skip the provider entirely
// and are written as paid immediately.
func (u *OrderUseCase) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateCreateOrder(input); err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:            uuid.NewString(),
		PackageType:   input.PackageType,
		BillingPeriod: model.BillingPeriod(input.BillingPeriod),
		Amount:        input.Amount,
		Currency:      u.currency,
		CustomerEmail: input.UserEmail,
	}
	if userID, err := strconv.ParseInt(input.UserID, 10, 64); err == nil && userID > 0 {
		order.UserID = &userID
	}

	if input.Amount == 0 {
		return u.createFreeOrder(ctx, order, input.CouponCode)
	}

	order.Status = model.OrderStatusInitialized
	order.PaymentProvider = defaultPaymentProvider
	if err := u.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	u.redeemCoupon(ctx, input.CouponCode, order.ID)

	checkout, err := u.checkout.CreateCheckout(ctx, psp.CheckoutRequest{
		OrderID:        order.ID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Description:    fmt.Sprintf("%s (%s)", order.PackageType, order.BillingPeriod),
		CustomerName:   input.CustomerName,
		CustomerEmail:  input.UserEmail,
		CustomerLocale: input.CustomerLocale,
		WebhookURL:     u.publicBaseURL + "/payments/webhook",
		RedirectURL:    u.successURL(order.ID),
		CancelURL:      u.publicBaseURL + "/payment/cancelled?order_id=" + order.ID,
	})
	if err != nil {
		// The order stays initialized; it can only progress through a
		// provider-confirmed webhook, which will never arrive for a
		// session that was never created.
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CreateOrderResult{Order: order, PaymentURL: checkout.PaymentURL}, nil
}

func (u *OrderUseCase) createFreeOrder(ctx context.Context, order *model.Order, couponCode string) (*CreateOrderResult, error) {
	order.Status = model.OrderStatusPaid
	order.PaymentProvider = model.PaymentProviderNone
	order.LinkedToUser = true
	if err := u.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create free order: %w", err)
	}

	u.redeemCoupon(ctx, couponCode, order.ID)

	return &CreateOrderResult{Order: order, PaymentURL: u.successURL(order.ID)}, nil
}

// redeemCoupon consumes a coupon use if possible. Coupon bookkeeping is
// secondary to payment correctness and never fails order creation.
func (u *OrderUseCase) redeemCoupon(ctx context.Context, code, orderID string) {
	if code == "" {
		return
	}
	redeemed, err := u.coupons.Redeem(ctx, code, orderID)
	if err != nil {
		u.logger.Warn("coupon redemption failed",
			slog.String("coupon", code),
			slog.String("order", orderID),
			slog.String("error", err.Error()),
		)
		return
	}
	if !redeemed {
		u.logger.Warn("coupon not redeemable",
			slog.String("coupon", code),
			slog.String("order", orderID),
		)
	}
}

func (u *OrderUseCase) successURL(orderID string) string {
	return u.publicBaseURL + "/payment/success?order_id=" + orderID
}
