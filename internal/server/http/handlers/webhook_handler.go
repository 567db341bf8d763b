package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/server/http/dto"
)

// WebhookHandler receives provider payment notifications.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Notify handles POST /payments/webhook. Both JSON and form encoded bodies
// are accepted, since providers differ in how they deliver callbacks.
// Duplicate and stale notifications return 200 so the provider's retry
// policy is satisfied; only genuine faults surface as errors.
func (h *WebhookHandler) Notify(c *gin.Context) {
	var req dto.WebhookRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload"})
		return
	}

	result, err := h.facade.ProcessWebhook(c.Request.Context(), req.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrEmptyTransactionID):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "missing transaction id"})
		case errors.Is(err, domainErrors.ErrUnknownStatus):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unknown order status"})
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "reconciliation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{Success: true, Outcome: result.Outcome.String()})
}

// Health handles GET /payments/webhook, the provider-side liveness probe.
func (h *WebhookHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
