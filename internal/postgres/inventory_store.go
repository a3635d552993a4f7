package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockroom/internal/stock"
)

type InventoryStore struct{ Pool *pgxpool.Pool }

const inventoryColumns = `product_id, store_id, available, reserved, total, last_updated, version`

func (s *InventoryStore) GetForUpdate(ctx context.Context, productID, storeID string) (*stock.Record, error) {
	row := runner(ctx, s.Pool).QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory WHERE product_id=$1 AND store_id=$2
		FOR UPDATE`, productID, storeID)
	return scanRecord(row, productID, storeID)
}

func (s *InventoryStore) Get(ctx context.Context, productID, storeID string) (*stock.Record, error) {
	row := runner(ctx, s.Pool).QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory WHERE product_id=$1 AND store_id=$2`, productID, storeID)
	return scanRecord(row, productID, storeID)
}

func (s *InventoryStore) ListByProduct(ctx context.Context, productID string) ([]stock.Record, error) {
	rows, err := runner(ctx, s.Pool).Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory WHERE product_id=$1 ORDER BY store_id`, productID)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func (s *InventoryStore) FindLowStock(ctx context.Context, storeID string, threshold int) ([]stock.Record, error) {
	rows, err := runner(ctx, s.Pool).Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory WHERE store_id=$1 AND available < $2 ORDER BY product_id`, storeID, threshold)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

// Save inserts a fresh record (version 0) or updates with an optimistic
// version check: zero rows affected means another transaction moved the
// version underneath despite the row lock.
func (s *InventoryStore) Save(ctx context.Context, rec *stock.Record) error {
	q := runner(ctx, s.Pool)

	if rec.Version == 0 {
		_, err := q.Exec(ctx, `
			INSERT INTO inventory (product_id, store_id, available, reserved, total, last_updated, version)
			VALUES ($1, $2, $3, $4, $5, $6, 1)`,
			rec.ProductID, rec.StoreID, rec.Available, rec.Reserved, rec.Total, rec.LastUpdated)
		if err != nil {
			return fmt.Errorf("insert inventory: %w", err)
		}
		rec.Version = 1
		return nil
	}

	ct, err := q.Exec(ctx, `
		UPDATE inventory
		SET available=$3, reserved=$4, total=$5, last_updated=$6, version=version+1
		WHERE product_id=$1 AND store_id=$2 AND version=$7`,
		rec.ProductID, rec.StoreID, rec.Available, rec.Reserved, rec.Total, rec.LastUpdated, rec.Version)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return stock.ErrOptimisticConflict
	}
	rec.Version++
	return nil
}

func scanRecord(row pgx.Row, productID, storeID string) (*stock.Record, error) {
	var rec stock.Record
	err := row.Scan(&rec.ProductID, &rec.StoreID, &rec.Available, &rec.Reserved,
		&rec.Total, &rec.LastUpdated, &rec.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: product=%s store=%s", stock.ErrInventoryNotFound, productID, storeID)
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &rec, nil
}

func collectRecords(rows pgx.Rows) ([]stock.Record, error) {
	defer rows.Close()
	var out []stock.Record
	for rows.Next() {
		var rec stock.Record
		if err := rows.Scan(&rec.ProductID, &rec.StoreID, &rec.Available, &rec.Reserved,
			&rec.Total, &rec.LastUpdated, &rec.Version); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
