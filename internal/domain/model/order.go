package model

import "time"

// OrderStatus is the closed set of statuses the payment provider may report.
type OrderStatus string

const (
	OrderStatusInitialized     OrderStatus = "initialized"
	OrderStatusUncleared       OrderStatus = "uncleared"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusExpired         OrderStatus = "expired"
	OrderStatusDeclined        OrderStatus = "declined"
	OrderStatusVoid            OrderStatus = "void"
	OrderStatusPartialRefunded OrderStatus = "partial_refunded"
	OrderStatusRefunded        OrderStatus = "refunded"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusPaid            OrderStatus = "paid"
)

// PaidPriority is the priority shared by the terminal paid statuses.
const PaidPriority = 10

var statusPriorities = map[OrderStatus]int{
	OrderStatusInitialized:     1,
	OrderStatusUncleared:       3,
	OrderStatusCancelled:       5,
	OrderStatusExpired:         5,
	OrderStatusDeclined:        5,
	OrderStatusVoid:            5,
	OrderStatusPartialRefunded: 8,
	OrderStatusRefunded:        9,
	OrderStatusCompleted:       PaidPriority,
	OrderStatusPaid:            PaidPriority,
}

// ParseOrderStatus validates a provider-reported status against the closed
// enum. Unknown values are rejected rather than passed through.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status := OrderStatus(raw)
	_, ok := statusPriorities[status]
	return status, ok
}

// Priority returns position of the status in the lattice. Unknown statuses
// rank below every valid one.
func (s OrderStatus) Priority() int {
	return statusPriorities[s]
}

// IsPaid reports whether the status is a terminal paid state.
func (s OrderStatus) IsPaid() bool {
	return s.Priority() == PaidPriority
}

// Supersedes reports whether an incoming status represents forward progress
// over the stored one. Equal priorities never supersede, so a stale or
// duplicate notification can never move the order backwards.
func (s OrderStatus) Supersedes(current OrderStatus) bool {
	return s.Priority() > current.Priority()
}

// BillingPeriod restricts subscription cadence to the two supported values.
type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

// Valid reports whether the billing period is one of the allowed values.
func (p BillingPeriod) Valid() bool {
	return p == BillingPeriodMonthly || p == BillingPeriodYearly
}

// PaymentProviderNone marks orders that never touched a provider.
const PaymentProviderNone = "none"

// Order is the canonical payment order record. Status only ever moves
// forward along the priority lattice; user linkage flips from unset to set
// exactly once.
type Order struct {
	ID              string
	UserID          *int64
	PackageType     string
	BillingPeriod   BillingPeriod
	Amount          int64
	Currency        string
	Status          OrderStatus
	PaymentProvider string
	LinkedToUser    bool
	CustomerEmail   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApplyOutcome describes the result of reconciling a provider-reported
// status against the stored one.
type ApplyOutcome int

const (
	// ApplyOutcomeApplied means the incoming status superseded the stored one.
	ApplyOutcomeApplied ApplyOutcome = iota
	// ApplyOutcomeDuplicate means the exact status was already stored.
	ApplyOutcomeDuplicate
	// ApplyOutcomeSuperseded means the incoming status was stale and dropped.
	ApplyOutcomeSuperseded
)

func (o ApplyOutcome) String() string {
	switch o {
	case ApplyOutcomeApplied:
		return "applied"
	case ApplyOutcomeDuplicate:
		return "duplicate"
	case ApplyOutcomeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}
