package dto

// LinkAccountRequest asks for the account linked to a paid order.
type LinkAccountRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// LinkedUser is the public projection of a linked account.
type LinkedUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// LinkAccountResponse reports the linking outcome. TemporaryPassword is only
// present the first time an account is created for the order.
type LinkAccountResponse struct {
	Success           bool        `json:"success"`
	AlreadyLinked     bool        `json:"alreadyLinked"`
	User              *LinkedUser `json:"user,omitempty"`
	TemporaryPassword string      `json:"temporaryPassword,omitempty"`
}
