package redisx

import "time"

const (
	// Availability snapshot: avail:{product_id}:{store_id|all}
	KeyAvailability = "avail:%s:%s"

	// Match pattern used to drop every snapshot for a product on mutation,
	// including the cross-store "all" aggregate.
	KeyAvailabilityPrefix = "avail:%s:*"
)

var TTLAvailability = 5 * time.Minute
