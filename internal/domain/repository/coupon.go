package repository

import "context"

// CouponRepository tracks discount code usage.
type CouponRepository interface {
	// Redeem consumes one use of an active coupon and records the order it
	// was applied to. Returns false when the code is unknown, inactive,
	// outside its validity window, or exhausted.
	Redeem(ctx context.Context, code, orderID string) (bool, error)
}
