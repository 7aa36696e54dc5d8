package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/bilguunmgl/go-shop-orders/internal/orders"
	"github.com/bilguunmgl/go-shop-orders/internal/redisx"
)

// Relay bridges the Kafka event topics onto the hub. Every valid envelope is
// broadcast verbatim to all connected clients; event ids are deduped via Redis
// so consumer-group rebalances do not replay notifications.
type Relay struct {
	Hub   *Hub
	Redis *redis.Client
	Name  string // dedup namespace, e.g. "pushgw"
}

// Handle is installed as the consumer handler for every topic in orders.Topics.
func (r *Relay) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// not an envelope; drop rather than poison the partition
		return nil
	}
	if env.EventID == "" {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, r.Name, env.EventID)
	if exists, _ := redisx.Exists(ctx, r.Redis, dkey); exists {
		return nil
	}
	_ = r.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	r.Hub.Broadcast(m.Value)
	return nil
}
