// Package worker moves mutated billing records from SQLite to the cloud
// spreadsheet, driven by AMQP messages with a pending-row scan as backup.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/sheets"
	"rentledger/internal/storage"
)

// Storage is the slice of the repository the worker reads and flags.
type Storage interface {
	GetRoom(ctx context.Context, roomID string) (*core.Room, error)
	GetReading(ctx context.Context, roomID string, period core.Period) (*core.Reading, error)
	LoadSettings(ctx context.Context) (core.Settings, error)
	GetPendingSyncReadings(ctx context.Context, limit int) ([]storage.PendingSyncReading, error)
	MarkSynced(ctx context.Context, roomID string, period core.Period) error
	MarkSyncError(ctx context.Context, roomID string, period core.Period) error
}

// SyncWorker pushes billing rows from SQLite to the cloud sheet.
type SyncWorker struct {
	storage   Storage
	sheet     sheets.RowWriter
	batchSize int
}

func NewSyncWorker(storage Storage, sheet sheets.RowWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		sheet:     sheet,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one reading sync message from AMQP. The
// message carries only the (room, period) key; everything else is read
// back from SQLite so the sheet always gets the latest state.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ReadingSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"room_id", msg.RoomID, "period", string(msg.Period))

	return w.syncReading(ctx, msg.RoomID, msg.Period)
}

// ProcessPendingReadings syncs any rows still flagged pending. This is a
// backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingReadings(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains pending rows left over from missed messages or
// worker downtime, with a larger batch than the periodic scan.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.storage.GetPendingSyncReadings(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending readings: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending readings", "count", len(pending))

	var synced, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range pending {
		g.Go(func() error {
			if err := w.syncReading(ctx, p.RoomID, p.Period); err != nil {
				slog.ErrorContext(ctx, "Failed to sync reading",
					"room_id", p.RoomID, "period", string(p.Period), "error", err)
				failed.Add(1)
				// Keep draining the rest of the batch.
				return nil
			}
			synced.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", synced.Load(),
		"errors", failed.Load())
	return nil
}

// syncReading loads the current record and pushes it to the sheet. A row
// deleted or never created under the key is acknowledged without error.
func (w *SyncWorker) syncReading(ctx context.Context, roomID string, period core.Period) error {
	reading, err := w.storage.GetReading(ctx, roomID, period)
	if err != nil {
		return fmt.Errorf("get reading: %w", err)
	}
	if reading == nil {
		slog.WarnContext(ctx, "No reading for sync key, skipping",
			"room_id", roomID, "period", string(period))
		return nil
	}

	room, err := w.storage.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return w.markError(ctx, roomID, period, core.ErrRoomNotFound)
	}

	settings, err := w.storage.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	row := sheets.NewBillingRow(*room, *reading, settings.Rates)
	ref, err := w.sheet.Upsert(ctx, row)
	if err != nil {
		return w.markError(ctx, roomID, period, fmt.Errorf("upsert row: %w", err))
	}

	if err := w.storage.MarkSynced(ctx, roomID, period); err != nil {
		// The sync itself worked; the flag will be retried by the scan.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"room_id", roomID, "period", string(period), "error", err)
	}

	slog.InfoContext(ctx, "Synced billing row",
		"room_id", roomID,
		"period", string(period),
		"sheet_ref", ref,
		"total", row.Total.Amount)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, roomID string, period core.Period, cause error) error {
	if err := w.storage.MarkSyncError(ctx, roomID, period); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error",
			"room_id", roomID, "period", string(period), "error", err)
	}
	return cause
}
