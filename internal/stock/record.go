package stock

import (
	"fmt"
	"time"
)

// Record is the stock line for one (product, store) pair.
// Total == Available + Reserved holds between transactions; the four
// mutators below are the only legal ways to change a record.
type Record struct {
	ProductID   string    `json:"product_id"`
	StoreID     string    `json:"store_id"`
	Available   int       `json:"available"`
	Reserved    int       `json:"reserved"`
	Total       int       `json:"total"`
	LastUpdated time.Time `json:"last_updated"`
	Version     int64     `json:"-"` // optimistic locking
}

func NewRecord(productID, storeID string, total int) *Record {
	return &Record{
		ProductID:   productID,
		StoreID:     storeID,
		Available:   total,
		Reserved:    0,
		Total:       total,
		LastUpdated: time.Now().UTC(),
	}
}

func (r *Record) CanReserve(qty int) bool {
	return r.Available >= qty
}

// Reserve moves qty units from available into reserved.
func (r *Record) Reserve(qty int) error {
	if !r.CanReserve(qty) {
		return &InsufficientStockError{
			ProductID: r.ProductID,
			StoreID:   r.StoreID,
			Requested: qty,
			Available: r.Available,
		}
	}
	r.Available -= qty
	r.Reserved += qty
	r.touch()
	return nil
}

// ReleaseReservation returns qty reserved units back to available.
func (r *Record) ReleaseReservation(qty int) error {
	if r.Reserved < qty {
		return fmt.Errorf("%w: cannot release %d units, only %d reserved", ErrInvalidState, qty, r.Reserved)
	}
	r.Reserved -= qty
	r.Available += qty
	r.touch()
	return nil
}

// ConfirmSale removes qty reserved units from the system entirely;
// sold stock does not return to available.
func (r *Record) ConfirmSale(qty int) error {
	if r.Reserved < qty {
		return fmt.Errorf("%w: cannot confirm %d units, only %d reserved", ErrInvalidState, qty, r.Reserved)
	}
	r.Reserved -= qty
	r.Total -= qty
	r.touch()
	return nil
}

// AdjustStock applies an external correction (restock, damage write-off,
// count correction) to available. Reserved is never touched.
func (r *Record) AdjustStock(delta int) error {
	if r.Available+delta < 0 {
		return fmt.Errorf("%w: delta %d would drive available %d below zero", ErrNegativeStock, delta, r.Available)
	}
	r.Available += delta
	r.Total = r.Available + r.Reserved
	r.touch()
	return nil
}

func (r *Record) touch() {
	r.LastUpdated = time.Now().UTC()
}
