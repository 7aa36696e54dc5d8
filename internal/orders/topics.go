package orders

const (
	TopicOrderCreated   = "shop.order.created"
	TopicOrderUpdated   = "shop.order.updated"
	TopicOrderCancelled = "shop.order.cancelled"
	TopicStockChanged   = "shop.stock.changed"
	TopicProductCreated = "shop.product.created"
	TopicProductUpdated = "shop.product.updated"
	TopicProductDeleted = "shop.product.deleted"
)

// Topics lists everything the push gateway relays to connected clients.
var Topics = []string{
	TopicOrderCreated,
	TopicOrderUpdated,
	TopicOrderCancelled,
	TopicStockChanged,
	TopicProductCreated,
	TopicProductUpdated,
	TopicProductDeleted,
}
