package orders

type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusConfirmed Status = "CONFIRMED"
	StatusDelivered Status = "DELIVERED"
)

// Valid reports membership only. Any status may be set from any other;
// the fulfillment flow deliberately has no transition graph.
func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusDelivered:
		return true
	}
	return false
}
