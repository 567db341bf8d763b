package repository

import (
	"context"

	"github.com/datingassistent/payments/internal/domain/model"
)

// UserRepository describes persistence operations with user accounts.
type UserRepository interface {
	Create(ctx context.Context, email, name, passwordHash string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdateSubscription(ctx context.Context, userID int64, sub model.Subscription) error
}
