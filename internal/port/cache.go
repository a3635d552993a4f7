package port

import (
	"context"

	"stockroom/internal/stock"
)

// AvailabilityCache fronts read-only availability queries. storeID may be
// empty, meaning the cross-store aggregate. All methods are best effort:
// a cache failure must never abort the owning operation.
type AvailabilityCache interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, productID, storeID string) (*stock.Availability, error)

	Set(ctx context.Context, productID, storeID string, snap *stock.Availability) error

	// InvalidateProduct drops every cached snapshot for the product,
	// including the cross-store aggregate entry.
	InvalidateProduct(ctx context.Context, productID string) error
}

// EventPublisher emits lifecycle events after a committed mutation.
// Fire-and-forget: publishing never fails the mutation.
type EventPublisher interface {
	Publish(eventType string, key []byte, payload any)
}
