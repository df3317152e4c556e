// Package ledger implements the billing ledger: the per-room, per-period
// reading records, the period rollover that opens them, and the one-hop
// forward propagation of meter corrections.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rentledger/internal/core"
)

// Store is the persistence boundary for rooms and readings. Absent
// readings are reported as (nil, nil), never as an error.
type Store interface {
	ListRooms(ctx context.Context) ([]core.Room, error)
	GetRoom(ctx context.Context, roomID string) (*core.Room, error)

	GetReading(ctx context.Context, roomID string, period core.Period) (*core.Reading, error)
	ListReadings(ctx context.Context, period core.Period) ([]core.Reading, error)
	// InsertReading fails with core.ErrReadingExists when a record for the
	// same (room, period) key is already present.
	InsertReading(ctx context.Context, r core.Reading) error
	// UpdateReading replaces exactly the record matching the reading's
	// key; core.ErrReadingNotFound when absent.
	UpdateReading(ctx context.Context, r core.Reading) error
}

// Service wraps a Store with the ledger's mutation rules. All mutations
// are synchronous; the store write is the single side effect.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Reading returns the record for one room and period, or nil if the
// period has not been opened for that room.
func (s *Service) Reading(ctx context.Context, roomID string, period core.Period) (*core.Reading, error) {
	return s.store.GetReading(ctx, roomID, period)
}

// ReadingsForPeriod returns all records for one period.
func (s *Service) ReadingsForPeriod(ctx context.Context, period core.Period) ([]core.Reading, error) {
	return s.store.ListReadings(ctx, period)
}

// Rooms returns the provisioned room set.
func (s *Service) Rooms(ctx context.Context) ([]core.Room, error) {
	return s.store.ListRooms(ctx)
}

// SetMeterReading records a current meter value for the given period and
// forward-propagates it as the starting value of the next period's record
// when that record already exists. Propagation is exactly one hop; a later
// period's own corrections trigger their own propagation.
func (s *Service) SetMeterReading(ctx context.Context, roomID string, period core.Period, meter core.MeterKind, value int64) error {
	if err := meter.Validate(); err != nil {
		return err
	}
	if value < 0 {
		return core.ErrNegativeMeter
	}

	reading, err := s.store.GetReading(ctx, roomID, period)
	if err != nil {
		return fmt.Errorf("load reading: %w", err)
	}
	if reading == nil {
		return core.ErrReadingNotFound
	}

	switch meter {
	case core.MeterElectricity:
		reading.CurrElectricity = value
	case core.MeterWater:
		reading.CurrWater = value
	}
	if err := s.store.UpdateReading(ctx, *reading); err != nil {
		return fmt.Errorf("update reading: %w", err)
	}

	if err := s.propagateForward(ctx, roomID, period, meter, value); err != nil {
		return fmt.Errorf("propagate correction: %w", err)
	}
	return nil
}

// propagateForward overwrites the matching starting value on the next
// period's record, if one exists. When the next period has not been opened
// yet the rollover will seed it from current values later, so nothing is
// written now.
func (s *Service) propagateForward(ctx context.Context, roomID string, period core.Period, meter core.MeterKind, value int64) error {
	next, err := s.store.GetReading(ctx, roomID, period.Next())
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	switch meter {
	case core.MeterElectricity:
		next.PrevElectricity = value
	case core.MeterWater:
		next.PrevWater = value
	}
	if err := s.store.UpdateReading(ctx, *next); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Propagated meter correction",
		"room_id", roomID,
		"from_period", string(period),
		"to_period", string(period.Next()),
		"meter", string(meter),
		"value", value)
	return nil
}

// SetOtherFees updates the extra fees on one record. No propagation.
func (s *Service) SetOtherFees(ctx context.Context, roomID string, period core.Period, fees core.Money) error {
	if err := fees.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, roomID, period, func(r *core.Reading) {
		r.OtherFees = fees
	})
}

// SetPaid toggles the payment status on one record. No propagation.
func (s *Service) SetPaid(ctx context.Context, roomID string, period core.Period, paid bool) error {
	return s.mutate(ctx, roomID, period, func(r *core.Reading) {
		r.Paid = paid
	})
}

// SetReceiptEvidence attaches or clears proof-of-payment on one record.
// An empty data URI clears the evidence.
func (s *Service) SetReceiptEvidence(ctx context.Context, roomID string, period core.Period, dataURI string) error {
	dataURI = strings.TrimSpace(dataURI)
	return s.mutate(ctx, roomID, period, func(r *core.Reading) {
		r.ReceiptImage = dataURI
	})
}

func (s *Service) mutate(ctx context.Context, roomID string, period core.Period, apply func(*core.Reading)) error {
	reading, err := s.store.GetReading(ctx, roomID, period)
	if err != nil {
		return fmt.Errorf("load reading: %w", err)
	}
	if reading == nil {
		return core.ErrReadingNotFound
	}
	apply(reading)
	if err := s.store.UpdateReading(ctx, *reading); err != nil {
		return fmt.Errorf("update reading: %w", err)
	}
	return nil
}
