package notify

import (
	"github.com/shopspring/decimal"

	"github.com/delmas-dev/bartab/internal/orders"
)

// Fanout dispatches each event to every sink in order.
type Fanout []orders.Notifier

func (f Fanout) NewOrder(o *orders.Order) {
	for _, n := range f {
		n.NewOrder(o)
	}
}

func (f Fanout) StatusUpdated(o *orders.Order) {
	for _, n := range f {
		n.StatusUpdated(o)
	}
}

func (f Fanout) OrderReady(o *orders.Order) {
	for _, n := range f {
		n.OrderReady(o)
	}
}

func (f Fanout) StockUpdated(drinkID string, quantity decimal.Decimal) {
	for _, n := range f {
		n.StockUpdated(drinkID, quantity)
	}
}

func (f Fanout) OrderModified(o *orders.Order, reason string) {
	for _, n := range f {
		n.OrderModified(o, reason)
	}
}
