package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	kafkax "github.com/delmas-dev/bartab/internal/kafka"
	"github.com/delmas-dev/bartab/internal/orders"
)

// Kafka publishes lifecycle events to one topic per event kind. Producers are
// buffered and async: a broker outage delays delivery but never a lifecycle
// transition.
type Kafka struct {
	service  string
	created  *kafkax.Producer
	status   *kafkax.Producer
	ready    *kafkax.Producer
	modified *kafkax.Producer
	stock    *kafkax.Producer
}

func NewKafka(brokers []string, service string) *Kafka {
	const buf = 1024
	return &Kafka{
		service:  service,
		created:  kafkax.NewProducer(brokers, orders.TopicOrderCreated, buf),
		status:   kafkax.NewProducer(brokers, orders.TopicOrderStatus, buf),
		ready:    kafkax.NewProducer(brokers, orders.TopicOrderReady, buf),
		modified: kafkax.NewProducer(brokers, orders.TopicOrderModified, buf),
		stock:    kafkax.NewProducer(brokers, orders.TopicStockUpdated, buf),
	}
}

func (k *Kafka) Start(ctx context.Context) {
	for _, p := range k.producers() {
		p.Start(ctx)
	}
}

func (k *Kafka) Close() {
	for _, p := range k.producers() {
		p.Close()
	}
	for _, p := range k.producers() {
		p.WaitClosed()
	}
}

func (k *Kafka) producers() []*kafkax.Producer {
	return []*kafkax.Producer{k.created, k.status, k.ready, k.modified, k.stock}
}

func (k *Kafka) publish(p *kafkax.Producer, eventType, correlationID string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.service,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (k *Kafka) NewOrder(o *orders.Order) {
	k.publish(k.created, orders.EventOrderCreated, o.ID, orders.OrderCreatedPayload{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Items:        orders.EventItems(o.Items),
		TotalAmount:  o.TotalAmount,
	})
}

func (k *Kafka) StatusUpdated(o *orders.Order) {
	k.publish(k.status, orders.EventStatusUpdated, o.ID, orders.StatusUpdatedPayload{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Status:       o.Status,
	})
}

func (k *Kafka) OrderReady(o *orders.Order) {
	k.publish(k.ready, orders.EventOrderReady, o.ID, orders.OrderReadyPayload{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
	})
}

func (k *Kafka) StockUpdated(drinkID string, quantity decimal.Decimal) {
	k.publish(k.stock, orders.EventStockUpdated, drinkID, orders.StockUpdatedPayload{
		DrinkID:  drinkID,
		Quantity: quantity,
	})
}

func (k *Kafka) OrderModified(o *orders.Order, reason string) {
	k.publish(k.modified, orders.EventOrderModified, o.ID, orders.OrderModifiedPayload{
		OrderID:     o.ID,
		Reason:      reason,
		TotalAmount: o.TotalAmount,
		Items:       orders.EventItems(o.Items),
	})
}
