package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the aggregate the lifecycle engine works on. TotalAmount is always
// recomputed from the items; it is never patched by hand.
type Order struct {
	ID                 string          `json:"id"`
	CustomerName       string          `json:"customer_name"`
	CreatedAt          time.Time       `json:"created_at"`
	AcceptedAt         *time.Time      `json:"accepted_at,omitempty"`
	ReadyAt            *time.Time      `json:"ready_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	Status             Status          `json:"status"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Items              []OrderItem     `json:"items"`
	PartiallyModified  bool            `json:"is_partially_modified"`
	ModificationReason string          `json:"modification_reason,omitempty"`
	LastModifiedAt     *time.Time      `json:"last_modified_at,omitempty"`
	Version            int             `json:"-"`
}

// OrderItem snapshots the drink name and unit price at order (or edit) time.
// Later catalog price changes do not touch existing orders.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	DrinkID   string          `json:"drink_id"`
	DrinkName string          `json:"drink_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TotalPrice is derived, never stored.
func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemRequest is a requested (drink, quantity) pair from the customer or the
// barman editing an order.
type ItemRequest struct {
	DrinkID  string `json:"drink_id"`
	Quantity int    `json:"quantity"`
}

func (o *Order) Accept() {
	now := time.Now().UTC()
	o.Status = StatusAccepted
	o.AcceptedAt = &now
}

// Reject stamps AcceptedAt as the decision timestamp, mirroring Accept.
func (o *Order) Reject() {
	now := time.Now().UTC()
	o.Status = StatusRejected
	o.AcceptedAt = &now
}

func (o *Order) MarkReady() {
	now := time.Now().UTC()
	o.Status = StatusReady
	o.ReadyAt = &now
}

func (o *Order) Complete() {
	now := time.Now().UTC()
	o.Status = StatusCompleted
	o.CompletedAt = &now
}

// CanBeEdited reports whether staff may still change the item set.
func (o *Order) CanBeEdited() bool {
	return o.Status == StatusPending
}

// RecalculateTotal resets TotalAmount to the sum of the item totals.
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.TotalPrice())
	}
	o.TotalAmount = total
}

// MarkModified records the audit triplet for a staff-driven edit.
func (o *Order) MarkModified(reason string) {
	now := time.Now().UTC()
	o.PartiallyModified = true
	o.ModificationReason = reason
	o.LastModifiedAt = &now
}
