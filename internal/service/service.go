package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stockroom/internal/breaker"
	"stockroom/internal/metrics"
	"stockroom/internal/port"
	"stockroom/internal/stock"
)

// Retry discipline for optimistic version conflicts. Business-rule
// failures are never retried.
const (
	maxAttempts  = 3
	retryBackoff = 100 * time.Millisecond
)

// Coordinator orchestrates reservation and ledger transitions as single
// logical transactions. Mutators of the same (product, store) pair are
// serialized by an exclusive keyed lock; the optimistic version check at
// commit catches whatever the lock cannot see at the storage layer.
type Coordinator struct {
	inventory    port.InventoryStore
	reservations port.ReservationStore
	tx           port.TxManager
	cache        port.AvailabilityCache
	events       port.EventPublisher
	reader       *breaker.AvailabilityReader
	defaultTTL   time.Duration
	locks        *keyLock
}

func NewCoordinator(
	inventory port.InventoryStore,
	reservations port.ReservationStore,
	tx port.TxManager,
	cache port.AvailabilityCache,
	events port.EventPublisher,
	defaultTTL time.Duration,
) *Coordinator {
	return &Coordinator{
		inventory:    inventory,
		reservations: reservations,
		tx:           tx,
		cache:        cache,
		events:       events,
		reader:       breaker.NewAvailabilityReader(cache),
		defaultTTL:   defaultTTL,
		locks:        newKeyLock(),
	}
}

type CreateRequest struct {
	ProductID  string
	StoreID    string
	Quantity   int
	CustomerID string
	TTL        time.Duration // zero means the configured default
}

// CreateReservation reserves quantity against the (product, store) pair
// and records a new ACTIVE reservation, atomically.
func (c *Coordinator) CreateReservation(ctx context.Context, req CreateRequest) (*stock.Reservation, error) {
	unlock := c.locks.lock(req.ProductID, req.StoreID)
	defer unlock()

	ttl := req.TTL
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	var res *stock.Reservation
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.tx.InTx(ctx, func(ctx context.Context) error {
			rec, err := c.inventory.GetForUpdate(ctx, req.ProductID, req.StoreID)
			if err != nil {
				return err
			}
			if err := rec.Reserve(req.Quantity); err != nil {
				return err
			}
			res = stock.NewReservation(req.ProductID, req.StoreID, req.CustomerID, req.Quantity, ttl)
			if err := c.inventory.Save(ctx, rec); err != nil {
				return err
			}
			return c.reservations.Save(ctx, res)
		})
	})
	if err != nil {
		var insufficient *stock.InsufficientStockError
		if errors.As(err, &insufficient) {
			metrics.InsufficientStockRejections.Inc()
		}
		return nil, err
	}

	metrics.ReservationsCreated.Inc()
	c.invalidate(ctx, req.ProductID)
	c.publishReservation(stock.EventReservationCreated, res)
	log.Info().
		Str("reservation_id", res.ID).
		Str("product_id", req.ProductID).
		Str("store_id", req.StoreID).
		Int("quantity", req.Quantity).
		Time("expires_at", res.ExpiresAt).
		Msg("reservation created")
	return res, nil
}

// ReleaseReservation cancels an ACTIVE reservation and returns its stock
// to availability. An ACTIVE-but-logically-expired reservation is still
// releasable; a terminal one is not.
func (c *Coordinator) ReleaseReservation(ctx context.Context, reservationID string) error {
	res, err := c.reservations.Get(ctx, reservationID)
	if err != nil {
		return err
	}

	unlock := c.locks.lock(res.ProductID, res.StoreID)
	defer unlock()

	err = c.withRetry(ctx, func(ctx context.Context) error {
		return c.tx.InTx(ctx, func(ctx context.Context) error {
			// Reload under the lock: a racing confirm or sweep may have won.
			res, err = c.reservations.Get(ctx, reservationID)
			if err != nil {
				return err
			}
			if res.Status != stock.StatusActive {
				return fmt.Errorf("%w: reservation %s is %s", stock.ErrInvalidState, res.ID, res.Status)
			}
			rec, err := c.inventory.GetForUpdate(ctx, res.ProductID, res.StoreID)
			if err != nil {
				return err
			}
			if err := rec.ReleaseReservation(res.Quantity); err != nil {
				return err
			}
			if err := res.Cancel(); err != nil {
				return err
			}
			if err := c.inventory.Save(ctx, rec); err != nil {
				return err
			}
			return c.reservations.Save(ctx, res)
		})
	})
	if err != nil {
		return err
	}

	metrics.ReservationsReleased.Inc()
	c.invalidate(ctx, res.ProductID)
	c.publishReservation(stock.EventReservationReleased, res)
	log.Info().Str("reservation_id", reservationID).Msg("reservation released")
	return nil
}

// ConfirmReservation turns an ACTIVE reservation into a sale: reserved
// stock leaves the system. Confirmation past the deadline is rejected
// even before the sweeper has run.
func (c *Coordinator) ConfirmReservation(ctx context.Context, reservationID string) error {
	res, err := c.reservations.Get(ctx, reservationID)
	if err != nil {
		return err
	}

	unlock := c.locks.lock(res.ProductID, res.StoreID)
	defer unlock()

	err = c.withRetry(ctx, func(ctx context.Context) error {
		return c.tx.InTx(ctx, func(ctx context.Context) error {
			res, err = c.reservations.Get(ctx, reservationID)
			if err != nil {
				return err
			}
			if err := res.Confirm(); err != nil {
				return err
			}
			rec, err := c.inventory.GetForUpdate(ctx, res.ProductID, res.StoreID)
			if err != nil {
				return err
			}
			if err := rec.ConfirmSale(res.Quantity); err != nil {
				return err
			}
			if err := c.inventory.Save(ctx, rec); err != nil {
				return err
			}
			return c.reservations.Save(ctx, res)
		})
	})
	if err != nil {
		return err
	}

	metrics.ReservationsConfirmed.Inc()
	c.invalidate(ctx, res.ProductID)
	c.publishReservation(stock.EventReservationConfirmed, res)
	log.Info().Str("reservation_id", reservationID).Str("confirmation_code", res.ConfirmationCode).
		Msg("reservation confirmed")
	return nil
}

// expireReservation is the sweeper's path. It shares the release
// machinery but observes a lost race as a clean no-op instead of an
// error: whichever transition committed first wins.
func (c *Coordinator) expireReservation(ctx context.Context, reservationID string) error {
	res, err := c.reservations.Get(ctx, reservationID)
	if err != nil {
		return err
	}

	unlock := c.locks.lock(res.ProductID, res.StoreID)
	defer unlock()

	swept := false
	err = c.withRetry(ctx, func(ctx context.Context) error {
		swept = false
		return c.tx.InTx(ctx, func(ctx context.Context) error {
			res, err = c.reservations.Get(ctx, reservationID)
			if err != nil {
				return err
			}
			if res.Status != stock.StatusActive || !res.IsExpired() {
				return nil
			}
			rec, err := c.inventory.GetForUpdate(ctx, res.ProductID, res.StoreID)
			if err != nil {
				return err
			}
			if err := rec.ReleaseReservation(res.Quantity); err != nil {
				return err
			}
			res.Expire()
			if err := c.inventory.Save(ctx, rec); err != nil {
				return err
			}
			if err := c.reservations.Save(ctx, res); err != nil {
				return err
			}
			swept = true
			return nil
		})
	})
	if err != nil || !swept {
		return err
	}

	metrics.ReservationsExpired.Inc()
	c.invalidate(ctx, res.ProductID)
	c.publishReservation(stock.EventReservationExpired, res)
	log.Info().Str("reservation_id", reservationID).Msg("reservation expired")
	return nil
}

type Adjustment struct {
	ProductID string
	StoreID   string
	Delta     int
	Reason    string
}

type AdjustmentResult struct {
	ProductID     string `json:"product_id"`
	StoreID       string `json:"store_id"`
	Status        string `json:"status"` // SUCCESS | ERROR
	PreviousStock *int   `json:"previous_stock,omitempty"`
	NewStock      *int   `json:"new_stock,omitempty"`
	EventID       string `json:"event_id,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// AdjustStockBatch processes each adjustment independently: one failing
// item is reported in its slot and never aborts its siblings. Results
// keep input order.
func (c *Coordinator) AdjustStockBatch(ctx context.Context, items []Adjustment) []AdjustmentResult {
	results := make([]AdjustmentResult, 0, len(items))
	for _, item := range items {
		results = append(results, c.adjustOne(ctx, item))
	}
	return results
}

func (c *Coordinator) adjustOne(ctx context.Context, item Adjustment) AdjustmentResult {
	unlock := c.locks.lock(item.ProductID, item.StoreID)
	defer unlock()

	var previous, next int
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.tx.InTx(ctx, func(ctx context.Context) error {
			rec, err := c.inventory.GetForUpdate(ctx, item.ProductID, item.StoreID)
			if err != nil {
				return err
			}
			previous = rec.Total
			if err := rec.AdjustStock(item.Delta); err != nil {
				return err
			}
			next = rec.Total
			return c.inventory.Save(ctx, rec)
		})
	})
	if err != nil {
		log.Warn().Err(err).
			Str("product_id", item.ProductID).
			Str("store_id", item.StoreID).
			Int("delta", item.Delta).
			Msg("stock adjustment failed")
		return AdjustmentResult{
			ProductID:    item.ProductID,
			StoreID:      item.StoreID,
			Status:       "ERROR",
			ErrorMessage: err.Error(),
		}
	}

	c.invalidate(ctx, item.ProductID)
	eventID := "EVT-" + uuid.NewString()
	c.publish(stock.EventStockAdjusted, stock.PartitionKey(item.ProductID), stock.StockAdjustedPayload{
		EventID:       eventID,
		ProductID:     item.ProductID,
		StoreID:       item.StoreID,
		Delta:         item.Delta,
		PreviousTotal: previous,
		NewTotal:      next,
	})
	return AdjustmentResult{
		ProductID:     item.ProductID,
		StoreID:       item.StoreID,
		Status:        "SUCCESS",
		PreviousStock: &previous,
		NewStock:      &next,
		EventID:       eventID,
	}
}

// LowStock lists records in a store whose available dropped below threshold.
func (c *Coordinator) LowStock(ctx context.Context, storeID string, threshold int) ([]stock.Record, error) {
	return c.inventory.FindLowStock(ctx, storeID, threshold)
}

// ReservationsByCustomer lists a customer's reservations, newest first.
func (c *Coordinator) ReservationsByCustomer(ctx context.Context, customerID string) ([]stock.Reservation, error) {
	return c.reservations.FindByCustomer(ctx, customerID)
}

// withRetry reattempts the transaction on optimistic conflicts only, up
// to the attempt bound with a fixed backoff. Every attempt re-acquires
// the row lock and re-reads current state; nothing stale is reused.
func (c *Coordinator) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if !errors.Is(err, stock.ErrOptimisticConflict) {
			return err
		}
		metrics.OptimisticConflicts.Inc()
		log.Warn().Int("attempt", attempt).Msg("optimistic conflict, retrying transaction")
		if attempt < maxAttempts {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

func (c *Coordinator) invalidate(ctx context.Context, productID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.InvalidateProduct(ctx, productID); err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("cache invalidation failed")
	}
}

func (c *Coordinator) publishReservation(eventType string, res *stock.Reservation) {
	c.publish(eventType, stock.PartitionKey(res.ProductID), stock.ReservationEventPayload{
		ReservationID: res.ID,
		ProductID:     res.ProductID,
		StoreID:       res.StoreID,
		Quantity:      res.Quantity,
		Status:        res.Status,
		ExpiresAt:     res.ExpiresAt,
	})
}

func (c *Coordinator) publish(eventType string, key []byte, payload any) {
	if c.events == nil {
		return
	}
	c.events.Publish(eventType, key, payload)
}
