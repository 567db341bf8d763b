package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/datingassistent/payments/internal/domain/model"
)

// Notifier delivers the best-effort side channels fired after account
// linking. Implementations must be safe to call repeatedly; failures are
// the caller's to log and swallow.
type Notifier interface {
	SendWelcome(ctx context.Context, user *model.User, temporaryPassword string) error
	NotifyStaff(ctx context.Context, order *model.Order, user *model.User) error
}

// HTTPNotifier posts notification jobs to the product's messaging endpoint.
type HTTPNotifier struct {
	client *resty.Client
	logger *slog.Logger
}

type notificationPayload struct {
	Kind              string `json:"kind"`
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
	TemporaryPassword string `json:"temporary_password,omitempty"`
	OrderID           string `json:"order_id,omitempty"`
	PackageType       string `json:"package_type,omitempty"`
	Amount            int64  `json:"amount,omitempty"`
	Currency          string `json:"currency,omitempty"`
}

// NewHTTPNotifier creates a notifier posting to the given endpoint.
func NewHTTPNotifier(endpoint string, logger *slog.Logger) *HTTPNotifier {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(10 * time.Second)
	return &HTTPNotifier{client: client, logger: logger}
}

// SendWelcome delivers the welcome email job, including the temporary
// credential for newly created accounts.
func (n *HTTPNotifier) SendWelcome(ctx context.Context, user *model.User, temporaryPassword string) error {
	return n.post(ctx, notificationPayload{
		Kind:              "welcome_email",
		Email:             user.Email,
		Name:              user.Name,
		TemporaryPassword: temporaryPassword,
	})
}

// NotifyStaff announces a new paying customer to internal staff.
func (n *HTTPNotifier) NotifyStaff(ctx context.Context, order *model.Order, user *model.User) error {
	return n.post(ctx, notificationPayload{
		Kind:        "new_customer",
		Email:       user.Email,
		OrderID:     order.ID,
		PackageType: order.PackageType,
		Amount:      order.Amount,
		Currency:    order.Currency,
	})
}

func (n *HTTPNotifier) post(ctx context.Context, payload notificationPayload) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/notifications")
	if err != nil {
		return fmt.Errorf("send %s: %w", payload.Kind, err)
	}
	if resp.IsError() {
		return fmt.Errorf("send %s: endpoint returned %s", payload.Kind, resp.Status())
	}
	return nil
}

// NopNotifier is used when no notification endpoint is configured.
type NopNotifier struct{}

func (NopNotifier) SendWelcome(context.Context, *model.User, string) error { return nil }

func (NopNotifier) NotifyStaff(context.Context, *model.Order, *model.User) error { return nil }
