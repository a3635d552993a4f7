package port

import (
	"context"

	"stockroom/internal/stock"
)

type InventoryStore interface {
	// GetForUpdate loads a record holding an exclusive row lock for the
	// duration of the surrounding transaction. Call inside TxManager.InTx.
	GetForUpdate(ctx context.Context, productID, storeID string) (*stock.Record, error)

	// Get loads a record without locking (availability reads).
	Get(ctx context.Context, productID, storeID string) (*stock.Record, error)

	// ListByProduct returns every store's record for a product.
	ListByProduct(ctx context.Context, productID string) ([]stock.Record, error)

	// Save persists a record with an optimistic version check and returns
	// stock.ErrOptimisticConflict if the stored version moved underneath.
	Save(ctx context.Context, rec *stock.Record) error

	// FindLowStock returns records in a store with available below threshold.
	FindLowStock(ctx context.Context, storeID string, threshold int) ([]stock.Record, error)
}
