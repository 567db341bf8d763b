package dto

// CreatePaymentRequest is the order creation payload. Amount is expressed in
// minor currency units.
type CreatePaymentRequest struct {
	PackageType    string `json:"packageType" binding:"required"`
	BillingPeriod  string `json:"billingPeriod" binding:"required,oneof=monthly yearly"`
	Amount         *int64 `json:"amount" binding:"required,gte=0"`
	UserID         string `json:"userId" binding:"required"`
	UserEmail      string `json:"userEmail" binding:"required,email"`
	CouponCode     string `json:"couponCode"`
	CustomerName   string `json:"customerName"`
	CustomerLocale string `json:"customerLocale"`
}

// CreatePaymentResponse returns the new order and where to send the customer.
type CreatePaymentResponse struct {
	Success    bool   `json:"success"`
	OrderID    string `json:"orderId"`
	PaymentURL string `json:"paymentUrl"`
}

// ErrorResponse is the error envelope shared by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
