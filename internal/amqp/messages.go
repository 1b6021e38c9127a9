package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage is a lightweight notification that a record changed.
// It carries only the topic, operation and record ID; consumers reload
// the affected snapshot from the store.
type ChangeMessage struct {
	Topic     string    `json:"topic"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change notification for a record
func NewChangeMessage(topic, op, id string) *ChangeMessage {
	return &ChangeMessage{
		Topic:     topic,
		Op:        op,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
