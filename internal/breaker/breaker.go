package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"stockroom/internal/port"
	"stockroom/internal/stock"
)

// AvailabilityReader guards store-backed availability reads. Once the
// recent failure rate trips the breaker, reads short-circuit to the last
// cached snapshot, or to a degraded empty snapshot on a cache miss.
type AvailabilityReader struct {
	cb    *gobreaker.CircuitBreaker
	cache port.AvailabilityCache
}

func NewAvailabilityReader(cache port.AvailabilityCache) *AvailabilityReader {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "availability-read",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		IsSuccessful: func(err error) bool {
			// A missing record is a business answer, not a store failure.
			return err == nil || errors.Is(err, stock.ErrInventoryNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	return &AvailabilityReader{cb: cb, cache: cache}
}

// Read runs the protected availability query. Not-found propagates;
// infrastructure failures (or an open breaker) fall back to the cache.
func (r *AvailabilityReader) Read(ctx context.Context, productID, storeID string,
	read func(ctx context.Context) (*stock.Availability, error)) (*stock.Availability, error) {

	out, err := r.cb.Execute(func() (any, error) { return read(ctx) })
	if err == nil {
		return out.(*stock.Availability), nil
	}
	if errors.Is(err, stock.ErrInventoryNotFound) {
		return nil, err
	}

	log.Warn().Err(err).Str("product_id", productID).Msg("availability read degraded, using fallback")
	if r.cache != nil {
		if snap, cerr := r.cache.Get(ctx, productID, storeID); cerr == nil && snap != nil {
			snap.CacheHit = true
			snap.Degraded = true
			return snap, nil
		}
	}
	return &stock.Availability{
		ProductID: productID,
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Degraded:  true,
	}, nil
}
