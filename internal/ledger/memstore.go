package ledger

import (
	"context"
	"sync"

	"rentledger/internal/core"
)

// MemStore is an in-memory Store used by tests and the "memory" data
// backend. All methods are safe for concurrent use.
type MemStore struct {
	mu       sync.Mutex
	rooms    []core.Room
	readings map[readingKey]core.Reading
	settings core.Settings
}

type readingKey struct {
	roomID string
	period core.Period
}

// NewMemStore seeds the store with the given rooms. A nil slice seeds the
// default provisioning set.
func NewMemStore(rooms []core.Room) *MemStore {
	if rooms == nil {
		rooms = core.DefaultRooms()
	}
	return &MemStore{
		rooms:    append([]core.Room(nil), rooms...),
		readings: make(map[readingKey]core.Reading),
		settings: core.DefaultSettings(),
	}
}

func (s *MemStore) LoadSettings(ctx context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *MemStore) SaveSettings(ctx context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (m *MemStore) ListRooms(_ context.Context) ([]core.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Room(nil), m.rooms...), nil
}

func (m *MemStore) GetRoom(_ context.Context, roomID string) (*core.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		if r.ID == roomID {
			room := r
			return &room, nil
		}
	}
	return nil, nil
}

// UpdateRoom replaces a provisioned room's mutable fields.
func (m *MemStore) UpdateRoom(_ context.Context, room core.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rooms {
		if m.rooms[i].ID == room.ID {
			m.rooms[i] = room
			return nil
		}
	}
	return core.ErrRoomNotFound
}

func (m *MemStore) GetReading(_ context.Context, roomID string, period core.Period) (*core.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.readings[readingKey{roomID, period}]; ok {
		reading := r
		return &reading, nil
	}
	return nil, nil
}

func (m *MemStore) ListReadings(_ context.Context, period core.Period) ([]core.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Reading
	// Room order keeps listings stable for callers.
	for _, room := range m.rooms {
		if r, ok := m.readings[readingKey{room.ID, period}]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemStore) InsertReading(_ context.Context, r core.Reading) error {
	if err := r.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := readingKey{r.RoomID, r.Period}
	if _, ok := m.readings[key]; ok {
		return core.ErrReadingExists
	}
	m.readings[key] = r
	return nil
}

func (m *MemStore) UpdateReading(_ context.Context, r core.Reading) error {
	if err := r.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := readingKey{r.RoomID, r.Period}
	if _, ok := m.readings[key]; !ok {
		return core.ErrReadingNotFound
	}
	m.readings[key] = r
	return nil
}
