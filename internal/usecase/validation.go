package usecase

import (
	"fmt"

	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/domain/model"
)

// validateCreateOrder enforces the order creation contract. Amounts are
// expressed in minor currency units so no float rounding can occur.
func validateCreateOrder(input CreateOrderInput) error {
	if input.PackageType == "" {
		return fmt.Errorf("%w: packageType", domainErrors.ErrMissingField)
	}
	if input.UserEmail == "" {
		return fmt.Errorf("%w: userEmail", domainErrors.ErrMissingField)
	}
	if input.UserID == "" {
		return fmt.Errorf("%w: userId", domainErrors.ErrMissingField)
	}
	if !model.BillingPeriod(input.BillingPeriod).Valid() {
		return domainErrors.ErrInvalidBillingPeriod
	}
	if input.Amount < 0 {
		return domainErrors.ErrInvalidAmount
	}
	return nil
}
