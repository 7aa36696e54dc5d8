package redisx

import "time"

const (
	// Order status cache: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing in the push gateway: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cache homepage products (JSON array)
	KeyHomepageProducts = "products:homepage"
)

var (
	TTLStatusCache   = 5 * time.Minute
	TTLDedup         = 48 * time.Hour
	TTLHomepageCache = 1 * time.Minute
)
