package amqp

import (
	"testing"
)

func TestReadingSyncMessageCarriesKeyOnly(t *testing.T) {
	msg := NewReadingSyncMessage("room-3", "2024-05")
	if msg.RoomID != "room-3" || msg.Period != "2024-05" {
		t.Fatalf("unexpected key: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp must be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := ReadingSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.RoomID != msg.RoomID || decoded.Period != msg.Period {
		t.Fatalf("round trip lost the ledger key: %+v", decoded)
	}
}

func TestReadingSyncMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ReadingSyncMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
