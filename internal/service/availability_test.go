package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stockroom/internal/stock"
)

type memCache struct {
	mu    sync.Mutex
	snaps map[string]*stock.Availability
}

func newMemCache() *memCache {
	return &memCache{snaps: map[string]*stock.Availability{}}
}

func cacheKey(productID, storeID string) string {
	if storeID == "" {
		storeID = "all"
	}
	return productID + ":" + storeID
}

func (m *memCache) Get(_ context.Context, productID, storeID string) (*stock.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[cacheKey(productID, storeID)]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (m *memCache) Set(_ context.Context, productID, storeID string, snap *stock.Availability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snap
	m.snaps[cacheKey(productID, storeID)] = &cp
	return nil
}

func (m *memCache) InvalidateProduct(_ context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.snaps {
		if len(key) > len(productID) && key[:len(productID)+1] == productID+":" {
			delete(m.snaps, key)
		}
	}
	return nil
}

func newCachedCoordinator() (*Coordinator, *memInventory, *memCache) {
	inv := newMemInventory()
	cache := newMemCache()
	c := NewCoordinator(inv, newMemReservations(), memTx{}, cache, &capturePublisher{}, 30*time.Minute)
	return c, inv, cache
}

func TestGetAvailability_SingleStore(t *testing.T) {
	c, inv, _ := newCachedCoordinator()
	inv.seed("SKU001", "STORE001", 50)

	snap, err := c.GetAvailability(context.Background(), "SKU001", "STORE001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.CacheHit {
		t.Error("first read must miss the cache")
	}
	if len(snap.Stores) != 1 || snap.Stores[0].Available != 50 {
		t.Errorf("got stores %+v", snap.Stores)
	}
	if snap.RequestID == "" {
		t.Error("missing request id")
	}

	// second read comes from the cache
	snap, err = c.GetAvailability(context.Background(), "SKU001", "STORE001")
	if err != nil {
		t.Fatal(err)
	}
	if !snap.CacheHit {
		t.Error("second read should hit the cache")
	}
}

func TestGetAvailability_AllStores(t *testing.T) {
	c, inv, _ := newCachedCoordinator()
	inv.seed("SKU001", "STORE001", 50)
	inv.seed("SKU001", "STORE002", 30)
	inv.seed("SKU002", "STORE001", 10)

	snap, err := c.GetAvailability(context.Background(), "SKU001", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Stores) != 2 {
		t.Errorf("got %d stores, want 2", len(snap.Stores))
	}
	total := 0
	for _, s := range snap.Stores {
		total += s.Available
	}
	if total != 80 {
		t.Errorf("aggregate available = %d, want 80", total)
	}
}

func TestGetAvailability_NotFound(t *testing.T) {
	c, _, _ := newCachedCoordinator()

	_, err := c.GetAvailability(context.Background(), "SKU404", "")
	if !errors.Is(err, stock.ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got: %v", err)
	}
}

func TestGetAvailability_InvalidatedAfterMutation(t *testing.T) {
	c, inv, _ := newCachedCoordinator()
	inv.seed("SKU001", "STORE001", 50)

	if _, err := c.GetAvailability(context.Background(), "SKU001", "STORE001"); err != nil {
		t.Fatal(err)
	}

	if _, err := c.CreateReservation(context.Background(), CreateRequest{
		ProductID: "SKU001", StoreID: "STORE001", Quantity: 20,
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := c.GetAvailability(context.Background(), "SKU001", "STORE001")
	if err != nil {
		t.Fatal(err)
	}
	if snap.CacheHit {
		t.Error("reservation must invalidate the cached snapshot")
	}
	if snap.Stores[0].Available != 30 || snap.Stores[0].Reserved != 20 {
		t.Errorf("stale availability after reservation: %+v", snap.Stores[0])
	}
}
