package stock

import (
	"errors"
	"fmt"
)

var (
	ErrInventoryNotFound   = errors.New("inventory not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation expired")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrNegativeStock       = errors.New("stock cannot go negative")
	ErrOptimisticConflict  = errors.New("optimistic lock conflict")
)

// InsufficientStockError carries the quantities a presentation layer
// needs to shape a conflict response.
type InsufficientStockError struct {
	ProductID string
	StoreID   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s in store %s: requested %d, available %d",
		e.ProductID, e.StoreID, e.Requested, e.Available)
}
