package redisx

import "time"

const (
	// Cached cart document: cart:{customer_id} -> JSON cart
	KeyCart = "cart:%s"

	// Write generation of a cart, bumped on every invalidation:
	// cartgen:{customer_id} -> counter
	KeyCartGen = "cartgen:%s"

	// Dedup of applied events: dedup:{service}:{id} (id = order_id)
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart    = 15 * time.Minute
	TTLCartGen = time.Hour
	TTLDedup   = 48 * time.Hour
)
