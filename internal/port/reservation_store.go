package port

import (
	"context"
	"time"

	"stockroom/internal/stock"
)

type ReservationStore interface {
	// Get returns a reservation or stock.ErrReservationNotFound.
	Get(ctx context.Context, id string) (*stock.Reservation, error)

	Save(ctx context.Context, r *stock.Reservation) error

	// FindExpiredActive returns reservations still ACTIVE whose deadline
	// passed before now. The sweeper's discovery query.
	FindExpiredActive(ctx context.Context, now time.Time) ([]stock.Reservation, error)

	FindByCustomer(ctx context.Context, customerID string) ([]stock.Reservation, error)
}

// TxManager runs fn inside a single storage transaction; the transaction
// travels in the context passed to fn. An error from fn rolls back.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
