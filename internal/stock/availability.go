package stock

import "time"

// Availability is the read-side snapshot served to callers. It is
// eventually consistent: built outside the per-record lock and cached.
type Availability struct {
	ProductID string       `json:"product_id"`
	Stores    []StoreStock `json:"stores"`
	RequestID string       `json:"request_id"`
	Timestamp time.Time    `json:"timestamp"`
	CacheHit  bool         `json:"cache_hit"`
	Degraded  bool         `json:"degraded,omitempty"`
}

type StoreStock struct {
	StoreID     string    `json:"store_id"`
	Available   int       `json:"available"`
	Reserved    int       `json:"reserved"`
	Total       int       `json:"total"`
	LastUpdated time.Time `json:"last_updated"`
}
