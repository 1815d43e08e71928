package orders

const (
	TopicOrderCreated  = "bar.order.created"
	TopicOrderStatus   = "bar.order.status"
	TopicOrderReady    = "bar.order.ready"
	TopicOrderModified = "bar.order.modified"
	TopicStockUpdated  = "bar.stock.updated"
)

// Partition key = order_id so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
