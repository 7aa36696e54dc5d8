package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderUpdated   = "OrderUpdated"
	EventOrderCancelled = "OrderCancelled"
	EventStockChanged   = "StockChanged"
	EventProductCreated = "ProductCreated"
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
)

// Envelope is the wire format for every broadcast event. Emission is strictly
// post-commit and fire-and-forget; nothing in here can fail a transaction.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"` // RFC3339
	Producer      string          `json:"producer"`    // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id or product_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload types per event ----

type OrderCreatedPayload struct {
	Order *Order `json:"order"`
}

type OrderUpdatedPayload struct {
	Order *Order `json:"order"`
}

type OrderCancelledPayload struct {
	OrderID string `json:"order_id"`
}

// StockChange records one counter movement. Delta is negative for a
// reservation, positive for a restoration.
type StockChange struct {
	ProductID  string `json:"product_id"`
	Size       string `json:"size,omitempty"`
	Delta      int    `json:"delta"`
	StockAfter int    `json:"stock_after"`
}

type StockChangedPayload struct {
	OrderID string        `json:"order_id"`
	Changes []StockChange `json:"changes"`
}

type ProductEventPayload struct {
	ProductID string `json:"product_id"`
}

// PartitionKey keeps every event of one entity on one partition, in order.
func PartitionKey(id string) []byte { return []byte(id) }
