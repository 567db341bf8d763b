package usecase_test

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/domain/model"
	"github.com/datingassistent/payments/internal/test"
	"github.com/datingassistent/payments/internal/usecase"
)

type notifierStub struct {
	WelcomeErr error
	StaffErr   error

	Welcomes []string
	Alerts   []string
}

func (s *notifierStub) SendWelcome(_ context.Context, user *model.User, _ string) error {
	s.Welcomes = append(s.Welcomes, user.Email)
	return s.WelcomeErr
}

func (s *notifierStub) NotifyStaff(_ context.Context, order *model.Order, _ *model.User) error {
	s.Alerts = append(s.Alerts, order.ID)
	return s.StaffErr
}

type plainHasher struct {
	HashErr error
}

func (h plainHasher) Hash(password string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return "hashed:" + password, nil
}

func (h plainHasher) Compare(hash string, password string) error {
	if hash == "hashed:"+password {
		return nil
	}
	return errors.New("mismatch")
}

func newLinkUseCase(orders *test.OrderRepositoryStub, users *test.UserRepositoryStub, notifier *notifierStub) *usecase.LinkUseCase {
	return usecase.NewLinkUseCase(orders, users, notifier, plainHasher{}, discardLogger())
}

func paidOrder(email string) *model.Order {
	return &model.Order{
		ID:            "order-1",
		Status:        model.OrderStatusPaid,
		PackageType:   "premium",
		BillingPeriod: model.BillingPeriodMonthly,
		Amount:        2999,
		Currency:      "EUR",
		CustomerEmail: email,
	}
}

func TestLinkFromOrderCreatesAccount(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	users := test.NewUserRepositoryStub()
	notifier := &notifierStub{}

	email := test.RandomEmail()
	orders.Put(paidOrder(email))

	uc := newLinkUseCase(orders, users, notifier)

	result, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.CreatedUser {
		t.Fatal("expected a new account")
	}
	if result.TemporaryPassword == "" {
		t.Fatal("expected a temporary password for the new account")
	}
	if result.User == nil || result.User.Email != email {
		t.Fatalf("unexpected user %+v", result.User)
	}

	stored := orders.Get("order-1")
	if !stored.LinkedToUser || stored.UserID == nil || *stored.UserID != result.User.ID {
		t.Fatalf("order not linked: %+v", stored)
	}

	created, err := users.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("account not persisted: %v", err)
	}
	if created.PasswordHash != "hashed:"+result.TemporaryPassword {
		t.Error("stored hash does not match the issued temporary password")
	}

	sub, ok := users.Subscriptions[result.User.ID]
	if !ok {
		t.Fatal("subscription not activated")
	}
	if sub.Type != "premium" || sub.Status != "active" {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if got := sub.StartedAt.AddDate(0, 1, 0); !got.Equal(sub.ExpiresAt) {
		t.Errorf("monthly subscription must last one month, got expiry %s", sub.ExpiresAt)
	}

	if len(notifier.Welcomes) != 1 || len(notifier.Alerts) != 1 {
		t.Fatalf("expected one welcome and one staff alert, got %d/%d", len(notifier.Welcomes), len(notifier.Alerts))
	}
}

func TestLinkFromOrderYearlySubscription(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	users := test.NewUserRepositoryStub()

	order := paidOrder(test.RandomEmail())
	order.BillingPeriod = model.BillingPeriodYearly
	orders.Put(order)

	uc := newLinkUseCase(orders, users, &notifierStub{})

	result, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sub := users.Subscriptions[result.User.ID]
	if got := sub.StartedAt.AddDate(1, 0, 0); !got.Equal(sub.ExpiresAt) {
		t.Errorf("yearly subscription must last one year, got expiry %s", sub.ExpiresAt)
	}
}

func TestLinkFromOrderReusesExistingAccount(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	users := test.NewUserRepositoryStub()
	notifier := &notifierStub{}

	email := test.RandomEmail()
	existing, err := users.Create(context.Background(), email, "Existing", "hash")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	orders.Put(paidOrder(email))

	uc := newLinkUseCase(orders, users, notifier)

	result, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CreatedUser {
		t.Fatal("must not create a second account for a known email")
	}
	if result.TemporaryPassword != "" {
		t.Fatal("existing accounts never get a temporary password")
	}
	if result.User.ID != existing.ID {
		t.Fatalf("expected user %d, got %d", existing.ID, result.User.ID)
	}
}

func TestLinkFromOrderPrefersOrderUserID(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	users := test.NewUserRepositoryStub()

	owner, err := users.Create(context.Background(), test.RandomEmail(), "Owner", "hash")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	order := paidOrder(test.RandomEmail())
	order.UserID = &owner.ID
	orders.Put(order)

	uc := newLinkUseCase(orders, users, &notifierStub{})

	result, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.User.ID != owner.ID {
		t.Fatalf("expected owner %d, got %d", owner.ID, result.User.ID)
	}
	if result.CreatedUser {
		t.Fatal("must not create an account when the order carries a user id")
	}
}

func TestLinkFromOrderIdempotent(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	users := test.NewUserRepositoryStub()
	notifier := &notifierStub{}

	orders.Put(paidOrder(test.RandomEmail()))

	uc := newLinkUseCase(orders, users, notifier)

	first, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("first link: %v", err)
	}
	second, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("second link: %v", err)
	}
	if !second.AlreadyLinked {
		t.Fatal("second invocation must report already linked")
	}
	if second.User == nil || second.User.ID != first.User.ID {
		t.Fatalf("second invocation must resolve the linked user, got %+v", second.User)
	}
	if len(notifier.Welcomes) != 1 || len(notifier.Alerts) != 1 {
		t.Fatal("side effects must fire exactly once")
	}
	if len(users.Subscriptions) != 1 {
		t.Fatal("subscription must be written exactly once")
	}
}

func TestLinkFromOrderLostRace(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	users := test.NewUserRepositoryStub()
	notifier := &notifierStub{}

	orders.Put(paidOrder(test.RandomEmail()))
	orders.LinkToUserFn = func(context.Context, string, int64) (bool, error) {
		return false, nil
	}

	uc := newLinkUseCase(orders, users, notifier)

	result, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.AlreadyLinked {
		t.Fatal("losing the link race must report already linked")
	}
	if len(notifier.Welcomes) != 0 || len(notifier.Alerts) != 0 {
		t.Fatal("losing the link race must not fire side effects")
	}
	if len(users.Subscriptions) != 0 {
		t.Fatal("losing the link race must not touch the subscription")
	}
}

func TestLinkFromOrderCreationRace(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	users := test.NewUserRepositoryStub()

	email := test.RandomEmail()
	orders.Put(paidOrder(email))

	// First lookup misses, creation collides with a concurrent writer,
	// second lookup resolves the account that writer inserted.
	winner := &model.User{ID: 7, Email: email}
	users.CreateErr = domainErrors.ErrAlreadyExists
	lookups := 0
	users.GetByEmailFn = func(context.Context, string) (*model.User, error) {
		lookups++
		if lookups == 1 {
			return nil, domainErrors.ErrNotFound
		}
		return winner, nil
	}

	uc := newLinkUseCase(orders, users, &notifierStub{})

	result, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lookups != 2 {
		t.Fatalf("expected two email lookups, got %d", lookups)
	}
	if result.CreatedUser {
		t.Fatal("conflict branch must not report a created account")
	}
	if result.User.ID != winner.ID {
		t.Fatalf("expected the existing account %d, got %d", winner.ID, result.User.ID)
	}
}

func TestLinkFromOrderRequiresPaidOrder(t *testing.T) {
	for _, status := range []model.OrderStatus{
		model.OrderStatusInitialized,
		model.OrderStatusUncleared,
		model.OrderStatusCancelled,
		model.OrderStatusRefunded,
	} {
		orders := test.NewOrderRepositoryStub()
		order := paidOrder(test.RandomEmail())
		order.Status = status
		orders.Put(order)

		uc := newLinkUseCase(orders, test.NewUserRepositoryStub(), &notifierStub{})

		if _, err := uc.LinkFromOrder(context.Background(), "order-1"); !errors.Is(err, domainErrors.ErrOrderNotPaid) {
			t.Errorf("status %s: expected ErrOrderNotPaid, got %v", status, err)
		}
	}
}

func TestLinkFromOrderUnknownOrder(t *testing.T) {
	uc := newLinkUseCase(test.NewOrderRepositoryStub(), test.NewUserRepositoryStub(), &notifierStub{})

	if _, err := uc.LinkFromOrder(context.Background(), "ghost"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLinkFromOrderSideEffectFailuresAreNonFatal(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	users := test.NewUserRepositoryStub()
	users.SubscriptionErr = errors.New("subscription service down")
	notifier := &notifierStub{
		WelcomeErr: errors.New("mailer down"),
		StaffErr:   errors.New("mailer down"),
	}

	orders.Put(paidOrder(test.RandomEmail()))

	uc := newLinkUseCase(orders, users, notifier)

	result, err := uc.LinkFromOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("side effect failures must not fail the link: %v", err)
	}
	if !orders.Get("order-1").LinkedToUser {
		t.Fatal("order must remain linked despite side effect failures")
	}
	if result.User == nil {
		t.Fatal("expected the linked user in the result")
	}
}

func TestLinkFromOrderCompletedCountsAsPaid(t *testing.T) {
	orders := test.NewOrderRepositoryStub()
	order := paidOrder(test.RandomEmail())
	order.Status = model.OrderStatusCompleted
	orders.Put(order)

	uc := newLinkUseCase(orders, test.NewUserRepositoryStub(), &notifierStub{})

	if _, err := uc.LinkFromOrder(context.Background(), "order-1"); err != nil {
		t.Fatalf("completed orders must be linkable: %v", err)
	}
}
