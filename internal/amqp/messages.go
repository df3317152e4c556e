package amqp

import (
	"encoding/json"
	"time"

	"rentledger/internal/core"
)

// ReadingSyncMessage is a lightweight notification that a billing record
// changed. It carries only the ledger key; the worker fetches the current
// row from the database, so a stale message simply re-syncs the latest
// state (last-writer-wins).
type ReadingSyncMessage struct {
	RoomID    string      `json:"room_id"`
	Period    core.Period `json:"period"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewReadingSyncMessage(roomID string, period core.Period) *ReadingSyncMessage {
	return &ReadingSyncMessage{
		RoomID:    roomID,
		Period:    period,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ReadingSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReadingSyncMessageFromJSON creates a message from JSON bytes.
func ReadingSyncMessageFromJSON(data []byte) (*ReadingSyncMessage, error) {
	var msg ReadingSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
