package model

import "time"

// Coupon is a discount code with a bounded number of uses. The usage counter
// is best-effort bookkeeping and never blocks order creation.
type Coupon struct {
	ID         int64
	Code       string
	MaxUses    *int
	UsedCount  int
	IsActive   bool
	ValidFrom  time.Time
	ValidUntil *time.Time
}
