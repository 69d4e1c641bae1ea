package amqp

import (
	"time"

	"github.com/goccy/go-json"

	"lexdash/internal/ports"
)

// RecordMessage is the wire form of a record event. Consumers fetch the
// record itself through the API; the message only names it.
type RecordMessage struct {
	Entity    string    `json:"entity"`
	Operation string    `json:"operation"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordMessage(ev ports.RecordEvent) *RecordMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &RecordMessage{
		Entity:    ev.Entity,
		Operation: ev.Operation,
		ID:        ev.ID,
		UserID:    ev.UserID,
		Timestamp: ts.UTC(),
	}
}

func (m *RecordMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordMessageFromJSON(data []byte) (*RecordMessage, error) {
	var msg RecordMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RoutingKey is "<entity>.<operation>", e.g. "invoice.updated".
func (m *RecordMessage) RoutingKey() string {
	return m.Entity + "." + m.Operation
}
