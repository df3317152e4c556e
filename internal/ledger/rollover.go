package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rentledger/internal/core"
)

// OpenPeriod ensures every provisioned room has a reading record for the
// given period, seeding each new record from the room's prior-period
// record per core.SeedFrom. The operation is idempotent: rooms that
// already have a record are left untouched. Rooms are processed
// independently, so one room's failure does not block the others; the
// joined error reports every failed room.
//
// Returns the number of records created.
func (s *Service) OpenPeriod(ctx context.Context, period core.Period) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rooms: %w", err)
	}

	created := 0
	var errs []error
	for _, room := range rooms {
		ok, err := s.openRoom(ctx, room.ID, period)
		if err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", room.ID, err))
			continue
		}
		if ok {
			created++
		}
	}

	if created > 0 {
		slog.InfoContext(ctx, "Opened billing period",
			"period", string(period),
			"rooms", len(rooms),
			"created", created)
	}
	return created, errors.Join(errs...)
}

func (s *Service) openRoom(ctx context.Context, roomID string, period core.Period) (bool, error) {
	existing, err := s.store.GetReading(ctx, roomID, period)
	if err != nil {
		return false, fmt.Errorf("check existing reading: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	prior, err := s.store.GetReading(ctx, roomID, period.Previous())
	if err != nil {
		return false, fmt.Errorf("load prior reading: %w", err)
	}

	seeded := core.SeedFrom(roomID, period, prior)
	if err := s.store.InsertReading(ctx, seeded); err != nil {
		// A concurrent open of the same period is not an error; the
		// record the other writer inserted satisfies the invariant.
		if errors.Is(err, core.ErrReadingExists) {
			return false, nil
		}
		return false, fmt.Errorf("insert seeded reading: %w", err)
	}
	return true, nil
}
