package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned when a caller requests a transition to a
// status label outside the known set.
var ErrInvalidStatus = errors.New("invalid order status")

// InsufficientInventoryError rejects a transition into preparation and names
// every ingredient that cannot cover the order's requirements. No stock is
// touched when it is returned.
type InsufficientInventoryError struct {
	Ingredients []string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: %s", strings.Join(e.Ingredients, ", "))
}

// ProductUnavailableError rejects order creation that references a product
// which does not exist or is not available for sale.
type ProductUnavailableError struct {
	ProductID uint
	Name      string
}

func (e *ProductUnavailableError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("product %q is not available", e.Name)
	}
	return fmt.Sprintf("product %d not found", e.ProductID)
}
