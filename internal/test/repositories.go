package test

import (
	"context"
	"sync"

	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/domain/model"
)

// OrderRepositoryStub keeps orders in memory and reproduces the conditional
// status write, so use case tests exercise the same reconciliation semantics
// the SQL implementation provides.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders map[string]*model.Order

	CreateFn      func(context.Context, *model.Order) error
	ApplyStatusFn func(context.Context, string, model.OrderStatus) (model.ApplyOutcome, error)
	LinkToUserFn  func(context.Context, string, int64) (bool, error)

	Created   []string
	Applied   []AppliedStatus
	Confirmed []string
}

// AppliedStatus records one ApplyStatus invocation.
type AppliedStatus struct {
	OrderID string
	Status  model.OrderStatus
	Outcome model.ApplyOutcome
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[string]*model.Order)}
}

// Put seeds an order.
func (s *OrderRepositoryStub) Put(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *order
	s.Orders[order.ID] = &copied
}

// Get returns a snapshot of a stored order.
func (s *OrderRepositoryStub) Get(id string) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.Orders[id]; ok {
		copied := *order
		return &copied
	}
	return nil
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Orders[order.ID]; exists {
		return domainErrors.ErrAlreadyExists
	}
	copied := *order
	s.Orders[order.ID] = &copied
	s.Created = append(s.Created, order.ID)
	return nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if order := s.Get(id); order != nil {
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) ApplyStatus(ctx context.Context, orderID string, incoming model.OrderStatus) (model.ApplyOutcome, error) {
	if s.ApplyStatusFn != nil {
		return s.ApplyStatusFn(ctx, orderID, incoming)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.Orders[orderID]
	if !ok {
		return model.ApplyOutcomeSuperseded, domainErrors.ErrNotFound
	}

	outcome := model.ApplyOutcomeSuperseded
	switch {
	case order.Status == incoming:
		outcome = model.ApplyOutcomeDuplicate
	case incoming.Supersedes(order.Status):
		order.Status = incoming
		outcome = model.ApplyOutcomeApplied
		if incoming.IsPaid() && !contains(s.Confirmed, orderID) {
			s.Confirmed = append(s.Confirmed, orderID)
		}
	}

	s.Applied = append(s.Applied, AppliedStatus{OrderID: orderID, Status: incoming, Outcome: outcome})
	return outcome, nil
}

func (s *OrderRepositoryStub) LinkToUser(ctx context.Context, orderID string, userID int64) (bool, error) {
	if s.LinkToUserFn != nil {
		return s.LinkToUserFn(ctx, orderID, userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok || order.LinkedToUser {
		return false, nil
	}
	order.UserID = &userID
	order.LinkedToUser = true
	return true, nil
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if v == needle {
			return true
		}
	}
	return false
}

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu      sync.Mutex
	ByEmail map[string]*model.User
	ByID    map[int64]*model.User
	Next    int64

	CreateErr       error
	SubscriptionErr error
	GetByEmailFn    func(context.Context, string) (*model.User, error)

	Subscriptions map[int64]model.Subscription
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		ByEmail:       make(map[string]*model.User),
		ByID:          make(map[int64]*model.User),
		Subscriptions: make(map[int64]model.Subscription),
		Next:          1,
	}
}

func (s *UserRepositoryStub) Create(ctx context.Context, email, name, passwordHash string) (*model.User, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ByEmail[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	user := &model.User{ID: s.Next, Email: email, Name: name, PasswordHash: passwordHash}
	s.Next++
	s.ByEmail[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.GetByEmailFn != nil {
		return s.GetByEmailFn(ctx, email)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.ByEmail[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *UserRepositoryStub) UpdateSubscription(ctx context.Context, userID int64, sub model.Subscription) error {
	if s.SubscriptionErr != nil {
		return s.SubscriptionErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ByID[userID]; !ok {
		return domainErrors.ErrNotFound
	}
	s.Subscriptions[userID] = sub
	return nil
}

// CouponRepositoryStub tracks redemption attempts.
type CouponRepositoryStub struct {
	mu sync.Mutex

	RedeemFn func(context.Context, string, string) (bool, error)

	Remaining int
	Attempts  []string
}

func (s *CouponRepositoryStub) Redeem(ctx context.Context, code, orderID string) (bool, error) {
	s.mu.Lock()
	s.Attempts = append(s.Attempts, code)
	s.mu.Unlock()
	if s.RedeemFn != nil {
		return s.RedeemFn(ctx, code, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Remaining <= 0 {
		return false, nil
	}
	s.Remaining--
	return true, nil
}

// OutboxRepositoryStub records outbox interactions.
type OutboxRepositoryStub struct {
	mu sync.Mutex

	Pending []model.ConfirmationEvent

	Delivered []int64
	Failed    []int64
	SelectErr error
}

func (s *OutboxRepositoryStub) SelectBatchForDelivery(ctx context.Context, limit int) ([]model.ConfirmationEvent, error) {
	if s.SelectErr != nil {
		return nil, s.SelectErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Pending) == 0 {
		return nil, nil
	}
	if limit > len(s.Pending) {
		limit = len(s.Pending)
	}
	batch := s.Pending[:limit]
	s.Pending = s.Pending[limit:]
	return batch, nil
}

func (s *OutboxRepositoryStub) MarkDelivered(ctx context.Context, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delivered = append(s.Delivered, eventID)
	return nil
}

func (s *OutboxRepositoryStub) MarkFailed(ctx context.Context, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed = append(s.Failed, eventID)
	return nil
}
