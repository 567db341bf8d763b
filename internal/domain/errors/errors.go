package errors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrInvalidBillingPeriod = errors.New("invalid billing period")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingField         = errors.New("missing required field")
	ErrUnknownStatus        = errors.New("unknown order status")
	ErrEmptyTransactionID   = errors.New("empty transaction id")
	ErrOrderNotPaid         = errors.New("order is not paid")
)
