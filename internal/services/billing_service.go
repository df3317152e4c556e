// Package services orchestrates ledger operations across local storage
// and the async cloud-sync pipeline.
package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/ledger"
)

// Store is the persistence surface the billing service needs: the ledger
// store plus rooms and settings management.
type Store interface {
	ledger.Store
	UpdateRoom(ctx context.Context, room core.Room) error
	LoadSettings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, settings core.Settings) error
}

// Publisher sends cloud-sync notifications for mutated readings. A nil
// publisher disables notifications; the worker's pending-row scan still
// picks the mutations up.
type Publisher interface {
	PublishReadingSync(ctx context.Context, roomID string, period core.Period) error
}

// BillingService orchestrates billing operations across SQLite and AMQP.
// Mutations are saved locally first; sync messages are best-effort.
type BillingService struct {
	store      Store
	ledger     *ledger.Service
	amqpClient Publisher
}

func NewBillingService(store Store, amqpClient *amqp.Client) *BillingService {
	svc := &BillingService{
		store:  store,
		ledger: ledger.NewService(store),
	}
	if amqpClient != nil {
		svc.amqpClient = amqpClient
	}
	return svc
}

// Rooms returns the provisioned room set.
func (s *BillingService) Rooms(ctx context.Context) ([]core.Room, error) {
	return s.ledger.Rooms(ctx)
}

// Room returns one room, or core.ErrRoomNotFound.
func (s *BillingService) Room(ctx context.Context, roomID string) (core.Room, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return core.Room{}, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return core.Room{}, core.ErrRoomNotFound
	}
	return *room, nil
}

// UpdateRoom replaces one room's name, base rent and PIN.
func (s *BillingService) UpdateRoom(ctx context.Context, room core.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Reading returns the record for one room and period, nil when the
// period has not been opened for that room.
func (s *BillingService) Reading(ctx context.Context, roomID string, period core.Period) (*core.Reading, error) {
	return s.ledger.Reading(ctx, roomID, period)
}

// ReadingsForPeriod returns all records for one period, in room order.
func (s *BillingService) ReadingsForPeriod(ctx context.Context, period core.Period) ([]core.Reading, error) {
	return s.ledger.ReadingsForPeriod(ctx, period)
}

// OpenPeriod seeds billing records for every room that does not have one
// yet in the given period. Returns the number of records created.
func (s *BillingService) OpenPeriod(ctx context.Context, period core.Period) (int, error) {
	created, err := s.ledger.OpenPeriod(ctx, period)
	if err != nil {
		return created, err
	}
	if created > 0 {
		slog.InfoContext(ctx, "Opened billing period",
			"period", string(period), "created", created)
	}
	return created, nil
}

// SetMeterReading records a current meter value and publishes a sync
// message for the mutated record.
func (s *BillingService) SetMeterReading(ctx context.Context, roomID string, period core.Period, meter core.MeterKind, value int64) error {
	if err := s.ledger.SetMeterReading(ctx, roomID, period, meter, value); err != nil {
		return err
	}
	s.publishSync(ctx, roomID, period)
	// A correction may have rewritten the next period's starting value.
	s.publishSync(ctx, roomID, period.Next())
	return nil
}

// SetOtherFees updates the extra fees on one record.
func (s *BillingService) SetOtherFees(ctx context.Context, roomID string, period core.Period, fees core.Money) error {
	if err := s.ledger.SetOtherFees(ctx, roomID, period, fees); err != nil {
		return err
	}
	s.publishSync(ctx, roomID, period)
	return nil
}

// SetPaid toggles the payment status on one record.
func (s *BillingService) SetPaid(ctx context.Context, roomID string, period core.Period, paid bool) error {
	if err := s.ledger.SetPaid(ctx, roomID, period, paid); err != nil {
		return err
	}
	s.publishSync(ctx, roomID, period)
	return nil
}

// SetReceiptEvidence attaches or clears proof-of-payment on one record.
func (s *BillingService) SetReceiptEvidence(ctx context.Context, roomID string, period core.Period, dataURI string) error {
	if err := s.ledger.SetReceiptEvidence(ctx, roomID, period, dataURI); err != nil {
		return err
	}
	s.publishSync(ctx, roomID, period)
	return nil
}

// Settings returns the stored global settings, defaults when none were
// saved yet.
func (s *BillingService) Settings(ctx context.Context) (core.Settings, error) {
	return s.store.LoadSettings(ctx)
}

// UpdateSettings validates and persists the global settings.
func (s *BillingService) UpdateSettings(ctx context.Context, settings core.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Summary computes the aggregate totals for one period. Rooms without a
// record in the period are excluded.
func (s *BillingService) Summary(ctx context.Context, period core.Period) (core.PeriodSummary, error) {
	if err := period.Validate(); err != nil {
		return core.PeriodSummary{}, err
	}
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("list rooms: %w", err)
	}
	readings, err := s.store.ListReadings(ctx, period)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("list readings: %w", err)
	}
	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("load settings: %w", err)
	}
	summary := core.SummarizePeriod(rooms, readings, settings.Rates)
	summary.Period = period
	return summary, nil
}

// VerifyAdminPIN reports whether the given PIN matches the stored admin
// PIN. Comparison is constant-time.
func (s *BillingService) VerifyAdminPIN(ctx context.Context, pin string) (bool, error) {
	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	return pinEqual(settings.AdminPIN, pin), nil
}

// VerifyRoomPIN reports whether the given PIN matches the room's PIN.
func (s *BillingService) VerifyRoomPIN(ctx context.Context, roomID, pin string) (bool, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("load room: %w", err)
	}
	if room == nil {
		return false, core.ErrRoomNotFound
	}
	return pinEqual(room.PIN, pin), nil
}

func pinEqual(want, got string) bool {
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func (s *BillingService) publishSync(ctx context.Context, roomID string, period core.Period) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishReadingSync(ctx, roomID, period); err != nil {
		// Don't fail the request - the mutation is saved locally and the
		// worker's pending scan will catch it up.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"room_id", roomID, "period", string(period), "error", err)
	}
}

// Close releases the AMQP connection, if any.
func (s *BillingService) Close() error {
	closer, ok := s.amqpClient.(interface{ Close() error })
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("close amqp: %w", err)
	}
	return nil
}
