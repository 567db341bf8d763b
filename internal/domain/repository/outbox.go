package repository

import (
	"context"

	"github.com/datingassistent/payments/internal/domain/model"
)

// OutboxRepository drains payment-confirmed events enqueued alongside
// status writes.
type OutboxRepository interface {
	// SelectBatchForDelivery claims up to limit events, marking them
	// processing so concurrent consumers skip them. Claims abandoned by a
	// crashed consumer become eligible again once they go stale.
	SelectBatchForDelivery(ctx context.Context, limit int) ([]model.ConfirmationEvent, error)
	MarkDelivered(ctx context.Context, eventID int64) error
	// MarkFailed returns the event to the pending state with an incremented
	// attempt counter so a later poll retries it.
	MarkFailed(ctx context.Context, eventID int64) error
}
