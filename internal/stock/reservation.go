package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	StatusActive    ReservationStatus = "ACTIVE"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusExpired   ReservationStatus = "EXPIRED"
)

// Reservation is a short-lived hold of stock against one (product, store)
// pair. It starts ACTIVE and terminates in exactly one of CONFIRMED,
// CANCELLED or EXPIRED; Quantity is fixed at creation.
type Reservation struct {
	ID               string            `json:"reservation_id"`
	ProductID        string            `json:"product_id"`
	StoreID          string            `json:"store_id"`
	CustomerID       string            `json:"customer_id,omitempty"`
	Quantity         int               `json:"quantity"`
	Status           ReservationStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	ExpiresAt        time.Time         `json:"expires_at"`
	ConfirmationCode string            `json:"confirmation_code"`
}

func NewReservation(productID, storeID, customerID string, quantity int, ttl time.Duration) *Reservation {
	now := time.Now().UTC()
	return &Reservation{
		ID:               "RES-" + uuid.NewString(),
		ProductID:        productID,
		StoreID:          storeID,
		CustomerID:       customerID,
		Quantity:         quantity,
		Status:           StatusActive,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
		ConfirmationCode: fmt.Sprintf("CONF-%04d", now.UnixMilli()%10000),
	}
}

// IsExpired is a logical deadline check, independent of the stored status:
// a reservation can be expired before the sweeper has transitioned it.
func (r *Reservation) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive && !r.IsExpired()
}

// Confirm transitions ACTIVE -> CONFIRMED. A reservation past its deadline
// cannot be confirmed even if the sweeper has not run yet.
func (r *Reservation) Confirm() error {
	if r.Status != StatusActive {
		return fmt.Errorf("%w: cannot confirm %s reservation %s", ErrInvalidState, r.Status, r.ID)
	}
	if r.IsExpired() {
		return fmt.Errorf("%w: %s", ErrReservationExpired, r.ID)
	}
	r.Status = StatusConfirmed
	return nil
}

// Cancel is legal from any state except CONFIRMED. Cancelling an
// expired-but-unswept reservation is the idempotent path to releasing
// its stock.
func (r *Reservation) Cancel() error {
	if r.Status == StatusConfirmed {
		return fmt.Errorf("%w: cannot cancel confirmed reservation %s", ErrInvalidState, r.ID)
	}
	r.Status = StatusCancelled
	return nil
}

// Expire transitions ACTIVE -> EXPIRED and is a no-op on terminal states,
// which keeps the sweeper safe to race against confirm and release.
func (r *Reservation) Expire() {
	if r.Status == StatusActive {
		r.Status = StatusExpired
	}
}
