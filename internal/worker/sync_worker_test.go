package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/sheets"
	"rentledger/internal/sheets/memory"
	"rentledger/internal/storage"
)

// fakeStorage implements Storage in memory with a pending-flag map.
type fakeStorage struct {
	mu       sync.Mutex
	rooms    map[string]core.Room
	readings map[string]core.Reading
	pending  map[string]bool
	errored  map[string]bool
	settings core.Settings
}

func key(roomID string, period core.Period) string {
	return roomID + "/" + string(period)
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		rooms:    map[string]core.Room{},
		readings: map[string]core.Reading{},
		pending:  map[string]bool{},
		errored:  map[string]bool{},
		settings: core.DefaultSettings(),
	}
}

func (f *fakeStorage) addReading(r core.Reading) {
	f.readings[key(r.RoomID, r.Period)] = r
	f.pending[key(r.RoomID, r.Period)] = true
}

func (f *fakeStorage) GetRoom(ctx context.Context, roomID string) (*core.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (f *fakeStorage) GetReading(ctx context.Context, roomID string, period core.Period) (*core.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.readings[key(roomID, period)]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeStorage) LoadSettings(ctx context.Context) (core.Settings, error) {
	return f.settings, nil
}

func (f *fakeStorage) GetPendingSyncReadings(ctx context.Context, limit int) ([]storage.PendingSyncReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.PendingSyncReading
	for k, p := range f.pending {
		if !p || len(out) >= limit {
			continue
		}
		r := f.readings[k]
		out = append(out, storage.PendingSyncReading{RoomID: r.RoomID, Period: r.Period})
	}
	return out, nil
}

func (f *fakeStorage) MarkSynced(ctx context.Context, roomID string, period core.Period) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[key(roomID, period)] = false
	return nil
}

func (f *fakeStorage) MarkSyncError(ctx context.Context, roomID string, period core.Period) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errored[key(roomID, period)] = true
	return nil
}

type failingSheet struct{}

func (failingSheet) Upsert(ctx context.Context, row sheets.BillingRow) (string, error) {
	return "", errors.New("sheet unavailable")
}

func TestHandleSyncMessagePushesRow(t *testing.T) {
	ctx := context.Background()
	store := newFakeStorage()
	store.rooms["room-1"] = core.Room{ID: "room-1", Name: "Phòng 1", BaseRent: core.Money{Amount: 3500000}}
	store.addReading(core.Reading{
		RoomID: "room-1", Period: "2024-05",
		PrevElectricity: 100, CurrElectricity: 150,
		PrevWater: 10, CurrWater: 13,
	})
	sheet := memory.New()
	w := NewSyncWorker(store, sheet, 10)

	msg := &amqp.ReadingSyncMessage{RoomID: "room-1", Period: "2024-05"}
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	row, ok := sheet.Row("room-1", "2024-05")
	if !ok {
		t.Fatal("row not written to sheet")
	}
	// 3_500_000 + 50*3_500 + 3*25_000 + 150_000
	if row.Total.Amount != 3_900_000 {
		t.Errorf("Total = %d, want 3900000", row.Total.Amount)
	}
	if store.pending[key("room-1", "2024-05")] {
		t.Error("row still flagged pending after sync")
	}
}

func TestHandleSyncMessageMissingReadingIsAcked(t *testing.T) {
	w := NewSyncWorker(newFakeStorage(), memory.New(), 10)
	msg := &amqp.ReadingSyncMessage{RoomID: "room-1", Period: "2024-07"}
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("missing reading should not error: %v", err)
	}
}

func TestProcessPendingReadingsDrainsBatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStorage()
	for _, room := range core.DefaultRooms() {
		store.rooms[room.ID] = room
		store.addReading(core.Reading{RoomID: room.ID, Period: "2024-05"})
	}
	sheet := memory.New()
	w := NewSyncWorker(store, sheet, 10)

	if err := w.ProcessPendingReadings(ctx); err != nil {
		t.Fatalf("ProcessPendingReadings: %v", err)
	}
	if sheet.Len() != 8 {
		t.Errorf("synced rows = %d, want 8", sheet.Len())
	}
	for _, room := range core.DefaultRooms() {
		if store.pending[key(room.ID, "2024-05")] {
			t.Errorf("%s still pending", room.ID)
		}
	}
}

func TestSyncFailureFlagsRow(t *testing.T) {
	ctx := context.Background()
	store := newFakeStorage()
	store.rooms["room-1"] = core.Room{ID: "room-1", Name: "Phòng 1", BaseRent: core.Money{Amount: 3500000}}
	store.addReading(core.Reading{RoomID: "room-1", Period: "2024-05"})
	w := NewSyncWorker(store, failingSheet{}, 10)

	msg := &amqp.ReadingSyncMessage{RoomID: "room-1", Period: "2024-05"}
	if err := w.HandleSyncMessage(ctx, msg); err == nil {
		t.Fatal("expected error from failing sheet")
	}
	if !store.errored[key("room-1", "2024-05")] {
		t.Error("row not flagged with sync error")
	}
}
