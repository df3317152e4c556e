// Package memory is an in-process stand-in for the cloud sheet, used by
// tests and local development without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"rentledger/internal/core"
	"rentledger/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows map[rowKey]sheets.BillingRow
}

type rowKey struct {
	roomID string
	period core.Period
}

var _ sheets.RowWriter = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[rowKey]sheets.BillingRow)}
}

// Upsert stores the row, replacing any prior row for the same key.
func (s *Store) Upsert(_ context.Context, row sheets.BillingRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rowKey{row.RoomID, row.Period}] = row
	return fmt.Sprintf("mem:%s:%s", row.RoomID, row.Period), nil
}

// Row returns the stored row for one key, for test assertions.
func (s *Store) Row(roomID string, period core.Period) (sheets.BillingRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[rowKey{roomID, period}]
	return row, ok
}

// Len reports how many distinct rows have been synced.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
