package httpx

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/bilguunmgl/go-shop-orders/internal/kafka"
	"github.com/bilguunmgl/go-shop-orders/internal/orders"
)

// Publisher is what the handlers need from the Kafka producer; satisfied by
// *kafkax.Producer. Emission is enqueue-only and can never fail a request.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// emitEvent publishes one enveloped event. Called strictly after the storage
// transaction is durable.
func emitEvent(p Publisher, producer, traceID, topic, eventType, correlationID string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(topic, orders.PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
