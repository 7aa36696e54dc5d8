package orders

import (
	"errors"
	"fmt"
)

// ErrTxConflict is returned when the storage transaction keeps failing on
// concurrent modification after the bounded retries are exhausted. It must
// never be reported as success.
var ErrTxConflict = errors.New("transaction conflict: retries exhausted")

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError covers missing products, size variants, and orders.
type NotFoundError struct {
	Resource string // "product" | "size" | "order"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

type InsufficientStockError struct {
	ProductID string
	Size      string // empty for flat-stock products
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Size != "" {
		return fmt.Sprintf("insufficient stock for product %s (size %s): available %d, requested %d",
			e.ProductID, e.Size, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}
