package dto

// WebhookRequest carries the only field of the provider notification that is
// used: the transaction reference. Everything else in the payload is ignored
// because it cannot be trusted.
type WebhookRequest struct {
	TransactionID string `json:"transactionid" form:"transactionid"`
}

// WebhookResponse acknowledges a notification. Applied, duplicate, and
// superseded outcomes all acknowledge so the provider stops retrying.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Outcome string `json:"outcome,omitempty"`
}
