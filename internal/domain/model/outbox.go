package model

import "time"

// EventPaymentConfirmed announces an order reaching a terminal paid status.
const EventPaymentConfirmed = "payment_confirmed"

// ConfirmationEvent is an outbox row persisted in the same transaction as
// the status write that produced it. At most one exists per order and event
// type, which keeps the downstream linking signal single-shot.
type ConfirmationEvent struct {
	ID          int64
	OrderID     string
	EventType   string
	Status      EventStatus
	Attempts    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// EventStatus tracks outbox delivery progress.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusProcessing EventStatus = "processing"
	EventStatusDelivered  EventStatus = "delivered"
)
