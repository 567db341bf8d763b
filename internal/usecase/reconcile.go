package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datingassistent/payments/internal/adapter/psp"
	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/domain/model"
	"github.com/datingassistent/payments/internal/domain/repository"
)

// TransactionProvider is the subset of the provider client used during
// webhook reconciliation.
type TransactionProvider interface {
	FetchTransaction(ctx context.Context, transactionID string) (*psp.Transaction, error)
}

// WebhookResult reports how a provider notification was reconciled.
type WebhookResult struct {
	OrderID string
	Status  model.OrderStatus
	Outcome model.ApplyOutcome
}

// ReconcileUseCase turns provider notifications into idempotent, monotonic
// status writes. The webhook body is never trusted: the authoritative status
// is re-fetched from the provider's own API.
type ReconcileUseCase struct {
	orders       repository.OrderRepository
	transactions TransactionProvider
	logger       *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(orders repository.OrderRepository, transactions TransactionProvider, logger *slog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{orders: orders, transactions: transactions, logger: logger}
}

// ProcessWebhook resolves a transaction reference to the provider-reported
// order state and applies it. Duplicate and stale notifications both resolve
// successfully so the provider stops retrying them.
func (u *ReconcileUseCase) ProcessWebhook(ctx context.Context, transactionID string) (*WebhookResult, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, domainErrors.ErrEmptyTransactionID
	}

	transaction, err := u.transactions.FetchTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, psp.ErrTransactionNotFound) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("fetch authoritative status: %w", err)
	}

	status, ok := model.ParseOrderStatus(transaction.Status)
	if !ok {
		u.logger.Warn("provider reported status outside the closed enum",
			slog.String("transaction", transactionID),
			slog.String("status", transaction.Status),
		)
		return nil, domainErrors.ErrUnknownStatus
	}

	outcome, err := u.orders.ApplyStatus(ctx, transaction.OrderID, status)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			// Should be impossible when provider and store agree; worth
			// alerting on because it signals a desync.
			u.logger.Error("webhook references unknown order",
				slog.String("transaction", transactionID),
				slog.String("order", transaction.OrderID),
			)
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("apply status: %w", err)
	}

	switch outcome {
	case model.ApplyOutcomeApplied:
		u.logger.Info("order status applied",
			slog.String("order", transaction.OrderID),
			slog.String("status", string(status)),
		)
	case model.ApplyOutcomeDuplicate:
		u.logger.Info("duplicate status notification",
			slog.String("order", transaction.OrderID),
			slog.String("status", string(status)),
		)
	case model.ApplyOutcomeSuperseded:
		u.logger.Warn("stale status notification dropped",
			slog.String("order", transaction.OrderID),
			slog.String("status", string(status)),
		)
	}

	return &WebhookResult{OrderID: transaction.OrderID, Status: status, Outcome: outcome}, nil
}
