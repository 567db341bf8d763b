package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/datingassistent/payments/internal/config"
	"github.com/datingassistent/payments/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newOrderUseCase,
	NewReconcileUseCase,
	NewLinkUseCase,
)

type orderUseCaseParams struct {
	fx.In

	Orders   repository.OrderRepository
	Coupons  repository.CouponRepository
	Checkout CheckoutProvider
	Config   *config.Config
	Logger   *slog.Logger
}

func newOrderUseCase(p orderUseCaseParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Coupons, p.Checkout, p.Config.Currency, p.Config.PublicBaseURL, p.Logger)
}
