package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/server/http/dto"
	"github.com/datingassistent/payments/internal/usecase"
)

// PaymentHandler manages order creation endpoints.
type PaymentHandler struct {
	facade OrderFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade OrderFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Create handles POST /payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	result, err := h.facade.CreateOrder(c.Request.Context(), usecase.CreateOrderInput{
		PackageType:    req.PackageType,
		BillingPeriod:  req.BillingPeriod,
		Amount:         *req.Amount,
		UserID:         req.UserID,
		UserEmail:      req.UserEmail,
		CouponCode:     req.CouponCode,
		CustomerName:   req.CustomerName,
		CustomerLocale: req.CustomerLocale,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrMissingField),
			errors.Is(err, domainErrors.ErrInvalidBillingPeriod),
			errors.Is(err, domainErrors.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Details: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "order creation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CreatePaymentResponse{
		Success:    true,
		OrderID:    result.Order.ID,
		PaymentURL: result.PaymentURL,
	})
}
