package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stockroom/internal/stock"
)

// GetAvailability serves the read side: cache first, then the
// breaker-guarded store read. storeID may be empty for the cross-store
// aggregate. Availability reads never take the per-record lock.
func (c *Coordinator) GetAvailability(ctx context.Context, productID, storeID string) (*stock.Availability, error) {
	if c.cache != nil {
		snap, err := c.cache.Get(ctx, productID, storeID)
		if err != nil {
			log.Debug().Err(err).Str("product_id", productID).Msg("availability cache read failed")
		} else if snap != nil {
			snap.CacheHit = true
			return snap, nil
		}
	}

	snap, err := c.reader.Read(ctx, productID, storeID, func(ctx context.Context) (*stock.Availability, error) {
		return c.readAvailability(ctx, productID, storeID)
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil && !snap.Degraded {
		if err := c.cache.Set(ctx, productID, storeID, snap); err != nil {
			log.Debug().Err(err).Str("product_id", productID).Msg("availability cache write failed")
		}
	}
	return snap, nil
}

func (c *Coordinator) readAvailability(ctx context.Context, productID, storeID string) (*stock.Availability, error) {
	var recs []stock.Record
	if storeID != "" {
		rec, err := c.inventory.Get(ctx, productID, storeID)
		if err != nil {
			return nil, err
		}
		recs = []stock.Record{*rec}
	} else {
		var err error
		recs, err = c.inventory.ListByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, fmt.Errorf("%w: product=%s", stock.ErrInventoryNotFound, productID)
		}
	}

	stores := make([]stock.StoreStock, 0, len(recs))
	for _, r := range recs {
		stores = append(stores, stock.StoreStock{
			StoreID:     r.StoreID,
			Available:   r.Available,
			Reserved:    r.Reserved,
			Total:       r.Total,
			LastUpdated: r.LastUpdated,
		})
	}
	return &stock.Availability{
		ProductID: productID,
		Stores:    stores,
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}, nil
}
