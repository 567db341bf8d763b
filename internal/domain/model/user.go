package model

import "time"

// User is an account that orders get linked to after payment.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Subscription describes the entitlement granted by a paid order.
type Subscription struct {
	Type      string
	Status    string
	StartedAt time.Time
	ExpiresAt time.Time
}
