package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/datingassistent/payments/internal/adapter/notify"
	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/domain/model"
	"github.com/datingassistent/payments/internal/domain/repository"
	"github.com/datingassistent/payments/internal/pkg/auth"
)

const temporaryPasswordLength = 16

// LinkResult reports the account linking outcome.
type LinkResult struct {
	User              *model.User
	TemporaryPassword string
	AlreadyLinked     bool
	CreatedUser       bool
}

// LinkUseCase associates a paid order with exactly one user account.
// Every entry point is idempotent: repeated invocations after a successful
// link are no-ops without side effects.
type LinkUseCase struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	notifier notify.Notifier
	hasher   auth.PasswordHasher
	logger   *slog.Logger
}

// NewLinkUseCase constructs LinkUseCase.
func NewLinkUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	notifier notify.Notifier,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) *LinkUseCase {
	return &LinkUseCase{orders: orders, users: users, notifier: notifier, hasher: hasher, logger: logger}
}

// LinkFromOrder ensures the order has a linked user account, creating one
// when no account matches the customer email. Side effects (subscription,
// staff alert, welcome email) fire only on the first successful link and
// are individually non-fatal.
func (u *LinkUseCase) LinkFromOrder(ctx context.Context, orderID string) (*LinkResult, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.IsPaid() {
		return nil, domainErrors.ErrOrderNotPaid
	}

	if order.LinkedToUser {
		return u.alreadyLinked(ctx, order)
	}

	user, temporaryPassword, created, err := u.resolveUser(ctx, order)
	if err != nil {
		return nil, err
	}

	linked, err := u.orders.LinkToUser(ctx, orderID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("link order to user: %w", err)
	}
	if !linked {
		// A concurrent invocation won the race; treat as already linked
		// so side effects fire at most once.
		return &LinkResult{User: user, AlreadyLinked: true}, nil
	}

	u.activateSubscription(ctx, order, user)
	u.notify(ctx, order, user, temporaryPassword)

	return &LinkResult{User: user, TemporaryPassword: temporaryPassword, CreatedUser: created}, nil
}

func (u *LinkUseCase) alreadyLinked(ctx context.Context, order *model.Order) (*LinkResult, error) {
	result := &LinkResult{AlreadyLinked: true}
	if order.UserID == nil {
		return result, nil
	}
	user, err := u.users.GetByID(ctx, *order.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return result, nil
		}
		return nil, err
	}
	result.User = user
	return result, nil
}

func (u *LinkUseCase) resolveUser(ctx context.Context, order *model.Order) (*model.User, string, bool, error) {
	if order.UserID != nil {
		user, err := u.users.GetByID(ctx, *order.UserID)
		if err != nil {
			return nil, "", false, fmt.Errorf("load order user: %w", err)
		}
		return user, "", false, nil
	}

	user, err := u.users.GetByEmail(ctx, order.CustomerEmail)
	if err == nil {
		return user, "", false, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, "", false, fmt.Errorf("find user by email: %w", err)
	}

	temporaryPassword, err := auth.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, "", false, err
	}
	hash, err := u.hasher.Hash(temporaryPassword)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash temporary password: %w", err)
	}

	user, err = u.users.Create(ctx, order.CustomerEmail, "", hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			// Lost a creation race; the existing account wins.
			existing, lookupErr := u.users.GetByEmail(ctx, order.CustomerEmail)
			if lookupErr != nil {
				return nil, "", false, lookupErr
			}
			return existing, "", false, nil
		}
		return nil, "", false, fmt.Errorf("create user: %w", err)
	}
	return user, temporaryPassword, true, nil
}

func (u *LinkUseCase) activateSubscription(ctx context.Context, order *model.Order, user *model.User) {
	now := time.Now()
	expires := now.AddDate(0, 1, 0)
	if order.BillingPeriod == model.BillingPeriodYearly {
		expires = now.AddDate(1, 0, 0)
	}

	err := u.users.UpdateSubscription(ctx, user.ID, model.Subscription{
		Type:      order.PackageType,
		Status:    "active",
		StartedAt: now,
		ExpiresAt: expires,
	})
	if err != nil {
		u.logger.Warn("subscription activation failed",
			slog.String("order", order.ID),
			slog.Int64("user", user.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (u *LinkUseCase) notify(ctx context.Context, order *model.Order, user *model.User, temporaryPassword string) {
	if err := u.notifier.NotifyStaff(ctx, order, user); err != nil {
		u.logger.Warn("staff notification failed",
			slog.String("order", order.ID),
			slog.String("error", err.Error()),
		)
	}
	if err := u.notifier.SendWelcome(ctx, user, temporaryPassword); err != nil {
		u.logger.Warn("welcome email failed",
			slog.String("order", order.ID),
			slog.String("error", err.Error()),
		)
	}
}
