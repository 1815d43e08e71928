package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated  = "OrderCreated"
	EventStatusUpdated = "OrderStatusUpdated"
	EventOrderReady    = "OrderReady"
	EventOrderModified = "OrderModified"
	EventStockUpdated  = "StockUpdated"
)

// Envelope is the wire format for every lifecycle event.
type Envelope struct {
	EventID       string          `json:"event_id"`                 // uuid
	EventType     string          `json:"event_type"`               // one of the consts above
	EventVersion  int             `json:"event_version"`            // 1
	OccurredAt    time.Time       `json:"occurred_at"`              // RFC3339
	Producer      string          `json:"producer"`                 // e.g. "bartab-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // usually order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payload types per event ----

type EventItem struct {
	DrinkID   string          `json:"drink_id"`
	DrinkName string          `json:"drink_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderCreatedPayload struct {
	OrderID      string          `json:"order_id"`
	CustomerName string          `json:"customer_name"`
	Items        []EventItem     `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

type StatusUpdatedPayload struct {
	OrderID      string `json:"order_id"`
	CustomerName string `json:"customer_name"`
	Status       Status `json:"status"`
}

type OrderReadyPayload struct {
	OrderID      string `json:"order_id"`
	CustomerName string `json:"customer_name"`
}

type OrderModifiedPayload struct {
	OrderID     string          `json:"order_id"`
	Reason      string          `json:"reason"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []EventItem     `json:"items"`
}

type StockUpdatedPayload struct {
	DrinkID  string          `json:"drink_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

func EventItems(items []OrderItem) []EventItem {
	out := make([]EventItem, 0, len(items))
	for _, it := range items {
		out = append(out, EventItem{
			DrinkID:   it.DrinkID,
			DrinkName: it.DrinkName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return out
}
