package stock

import (
	"encoding/json"
	"time"
)

const (
	EventReservationCreated   = "ReservationCreated"
	EventReservationConfirmed = "ReservationConfirmed"
	EventReservationReleased  = "ReservationReleased"
	EventReservationExpired   = "ReservationExpired"
	EventStockAdjusted        = "StockAdjusted"
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"` // 1
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type ReservationEventPayload struct {
	ReservationID string            `json:"reservation_id"`
	ProductID     string            `json:"product_id"`
	StoreID       string            `json:"store_id"`
	Quantity      int               `json:"quantity"`
	Status        ReservationStatus `json:"status"`
	ExpiresAt     time.Time         `json:"expires_at"`
}

type StockAdjustedPayload struct {
	EventID       string `json:"event_id"`
	ProductID     string `json:"product_id"`
	StoreID       string `json:"store_id"`
	Delta         int    `json:"delta"`
	PreviousTotal int    `json:"previous_total"`
	NewTotal      int    `json:"new_total"`
}
