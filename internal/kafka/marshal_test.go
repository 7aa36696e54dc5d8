package kafka

import (
	"encoding/json"
	"testing"
)

type stockEvent struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
}

func TestUnwrapPayload(t *testing.T) {
	raw := json.RawMessage(`{"product_id":"p1","delta":-2}`)

	ev, err := UnwrapPayload[stockEvent](raw)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if ev.ProductID != "p1" || ev.Delta != -2 {
		t.Fatalf("unexpected payload: %+v", ev)
	}
}

func TestUnwrapPayloadInvalid(t *testing.T) {
	if _, err := UnwrapPayload[stockEvent](json.RawMessage(`{`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestMustMarshalRoundTrip(t *testing.T) {
	b := MustMarshal(stockEvent{ProductID: "p1", Delta: 3})

	var out stockEvent
	if err := UnmarshalEnvelope(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.ProductID != "p1" || out.Delta != 3 {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}
