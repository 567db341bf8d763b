package psp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrTransactionNotFound indicates the provider doesn't know the transaction.
var ErrTransactionNotFound = errors.New("transaction not found")

// CheckoutRequest describes a hosted checkout session to create.
type CheckoutRequest struct {
	OrderID        string
	Amount         int64
	Currency       string
	Description    string
	CustomerName   string
	CustomerEmail  string
	CustomerLocale string
	WebhookURL     string
	RedirectURL    string
	CancelURL      string
}

// Checkout is the provider's answer to a session request.
type Checkout struct {
	TransactionID string
	PaymentURL    string
}

// Transaction is the provider's authoritative view of a payment.
// Status is reported verbatim and must be validated by the caller.
type Transaction struct {
	TransactionID string
	OrderID       string
	Status        string
}

// Client exposes operations against the payment provider API.
type Client interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	FetchTransaction(ctx context.Context, transactionID string) (*Transaction, error)
}

// HTTPClient implements Client via the provider's REST API.
type HTTPClient struct {
	client *resty.Client
	logger *slog.Logger
}

type checkoutPayload struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	Customer    struct {
		Name   string `json:"name,omitempty"`
		Email  string `json:"email"`
		Locale string `json:"locale,omitempty"`
	} `json:"customer"`
	WebhookURL  string `json:"webhook_url"`
	RedirectURL string `json:"redirect_url"`
	CancelURL   string `json:"cancel_url"`
}

type checkoutResponse struct {
	TransactionID string `json:"transactionid"`
	PaymentURL    string `json:"payment_url"`
}

type transactionResponse struct {
	TransactionID string `json:"transactionid"`
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
}

// NewHTTPClient creates a provider client with a bounded request timeout.
func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("provider url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(parsed.String()).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}

	return &HTTPClient{client: client, logger: logger}, nil
}

// CreateCheckout asks the provider for a hosted payment session.
func (c *HTTPClient) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	payload := checkoutPayload{
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		WebhookURL:  req.WebhookURL,
		RedirectURL: req.RedirectURL,
		CancelURL:   req.CancelURL,
	}
	payload.Customer.Name = req.CustomerName
	payload.Customer.Email = req.CustomerEmail
	payload.Customer.Locale = req.CustomerLocale

	var result checkoutResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post("/v1/checkouts")
	if err != nil {
		return nil, fmt.Errorf("create checkout: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("checkout creation failed",
			slog.Int("status", resp.StatusCode()),
			slog.String("body", resp.String()),
		)
		return nil, fmt.Errorf("create checkout: provider returned %s", resp.Status())
	}
	if result.TransactionID == "" || result.PaymentURL == "" {
		return nil, fmt.Errorf("create checkout: incomplete provider response")
	}

	return &Checkout{TransactionID: result.TransactionID, PaymentURL: result.PaymentURL}, nil
}

// FetchTransaction queries the provider for the authoritative state of a
// transaction. The webhook receiver relies on this instead of the webhook
// body, so a forged notification cannot drive a state change.
func (c *HTTPClient) FetchTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	var result transactionResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetPathParam("id", transactionID).
		Get("/v1/transactions/{id}")
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}

	switch {
	case resp.StatusCode() == 404:
		return nil, ErrTransactionNotFound
	case resp.IsError():
		c.logger.Error("transaction fetch failed",
			slog.String("transaction", transactionID),
			slog.Int("status", resp.StatusCode()),
			slog.String("body", resp.String()),
		)
		return nil, fmt.Errorf("fetch transaction: provider returned %s", resp.Status())
	}

	return &Transaction{
		TransactionID: result.TransactionID,
		OrderID:       result.OrderID,
		Status:        result.Status,
	}, nil
}
