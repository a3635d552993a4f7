package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stockroom/internal/stock"
)

// Cache is the Redis-backed availability cache. Entries are keyed per
// (product, store) plus one "all" aggregate per product; invalidation is
// by product prefix so a per-store mutation also drops the aggregate.
type Cache struct {
	Client *redis.Client
}

func (c *Cache) Get(ctx context.Context, productID, storeID string) (*stock.Availability, error) {
	b, err := c.Client.Get(ctx, availabilityKey(productID, storeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap stock.Availability
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Cache) Set(ctx context.Context, productID, storeID string, snap *stock.Availability) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, availabilityKey(productID, storeID), b, TTLAvailability).Err()
}

func (c *Cache) InvalidateProduct(ctx context.Context, productID string) error {
	iter := c.Client.Scan(ctx, 0, fmt.Sprintf(KeyAvailabilityPrefix, productID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

func availabilityKey(productID, storeID string) string {
	if storeID == "" {
		storeID = "all"
	}
	return fmt.Sprintf(KeyAvailability, productID, storeID)
}
