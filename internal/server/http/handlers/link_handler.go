package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/server/http/dto"
)

// LinkHandler exposes the account linking trigger.
type LinkHandler struct {
	facade LinkFacade
}

// NewLinkHandler constructs LinkHandler.
func NewLinkHandler(facade LinkFacade) *LinkHandler {
	return &LinkHandler{facade: facade}
}

// LinkFromOrder handles POST /accounts/link-from-order. Repeated calls for
// the same order report the existing link without side effects.
func (h *LinkHandler) LinkFromOrder(c *gin.Context) {
	var req dto.LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	result, err := h.facade.LinkFromOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "order not found"})
		case errors.Is(err, domainErrors.ErrOrderNotPaid):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "order is not paid"})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "account linking failed"})
		}
		return
	}

	response := dto.LinkAccountResponse{
		Success:           true,
		AlreadyLinked:     result.AlreadyLinked,
		TemporaryPassword: result.TemporaryPassword,
	}
	if result.User != nil {
		response.User = &dto.LinkedUser{ID: result.User.ID, Email: result.User.Email}
	}

	c.JSON(http.StatusOK, response)
}
