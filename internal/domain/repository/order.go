package repository

import (
	"context"

	"github.com/datingassistent/payments/internal/domain/model"
)

// OrderRepository describes persistence operations with payment orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	// ApplyStatus reconciles a provider-reported status against the stored
	// one as a single conditional write. The status only changes when the
	// incoming priority is strictly higher; a write landing on a paid
	// status enqueues the payment-confirmed event in the same transaction.
	ApplyStatus(ctx context.Context, orderID string, incoming model.OrderStatus) (model.ApplyOutcome, error)
	// LinkToUser flips the one-way linkage flag. Returns false when the
	// order was already linked.
	LinkToUser(ctx context.Context, orderID string, userID int64) (bool, error)
}
