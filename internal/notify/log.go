// Package notify provides the notification sinks informed of order lifecycle
// events: a structured-log sink, a Kafka event sink and a fan-out combinator.
// Sinks are fire-and-forget; they swallow their own failures and never affect
// the transition that triggered them.
package notify

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/delmas-dev/bartab/internal/orders"
)

// Log announces lifecycle events on the service log, for the barman console
// and for audit.
type Log struct {
	L *zap.Logger
}

func (n *Log) NewOrder(o *orders.Order) {
	n.L.Info("new order",
		zap.String("order_id", o.ID),
		zap.String("customer", o.CustomerName),
		zap.String("total", o.TotalAmount.String()))
}

func (n *Log) StatusUpdated(o *orders.Order) {
	n.L.Info("order status updated",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)))
}

func (n *Log) OrderReady(o *orders.Order) {
	n.L.Info("order ready",
		zap.String("order_id", o.ID),
		zap.String("customer", o.CustomerName))
}

func (n *Log) StockUpdated(drinkID string, quantity decimal.Decimal) {
	n.L.Info("stock updated",
		zap.String("drink_id", drinkID),
		zap.String("quantity", quantity.String()))
}

func (n *Log) OrderModified(o *orders.Order, reason string) {
	items := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, it.DrinkName)
	}
	n.L.Info("order modified by barman",
		zap.String("order_id", o.ID),
		zap.String("customer", o.CustomerName),
		zap.String("reason", reason),
		zap.String("new_total", o.TotalAmount.String()),
		zap.Strings("remaining_items", items))
}
