package redisx

import "time"

const (
	// Cached order view for the public status endpoint: order:{order_id} -> JSON
	KeyOrder = "order:%s"

	// Cached menu listing: menu:all, menu:cat:{category} -> JSON array
	KeyMenu         = "menu:all"
	KeyMenuCategory = "menu:cat:%s"

	// Dedup for the notifier worker: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLMenuCache  = 1 * time.Minute
	TTLDedup      = 48 * time.Hour
)
