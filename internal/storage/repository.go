package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"rentledger/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists rooms, readings and settings. It implements
// ledger.Store plus the settings load/save boundary and the sync-queue
// queries used by the worker.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListRooms implements ledger.Store. Rooms come back in provisioning
// order.
func (r *SQLiteRepository) ListRooms(ctx context.Context) ([]core.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, base_rent, pin FROM rooms ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []core.Room
	for rows.Next() {
		var room core.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.BaseRent.Amount, &room.PIN); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// GetRoom implements ledger.Store; (nil, nil) when the room is unknown.
func (r *SQLiteRepository) GetRoom(ctx context.Context, roomID string) (*core.Room, error) {
	var room core.Room
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, base_rent, pin FROM rooms WHERE id = ?`, roomID).
		Scan(&room.ID, &room.Name, &room.BaseRent.Amount, &room.PIN)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

// UpdateRoom replaces a room's mutable fields (name, base rent, PIN).
func (r *SQLiteRepository) UpdateRoom(ctx context.Context, room core.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, base_rent = ?, pin = ? WHERE id = ?`,
		room.Name, room.BaseRent.Amount, room.PIN, room.ID)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrRoomNotFound
	}
	return nil
}

// GetReading implements ledger.Store; (nil, nil) when absent.
func (r *SQLiteRepository) GetReading(ctx context.Context, roomID string, period core.Period) (*core.Reading, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT room_id, period, prev_electricity, curr_electricity,
		        prev_water, curr_water, other_fees, paid, receipt_image
		 FROM readings WHERE room_id = ? AND period = ?`, roomID, string(period))
	reading, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reading: %w", err)
	}
	return reading, nil
}

// ListReadings implements ledger.Store, ordered by room provisioning
// order so exports and listings stay stable.
func (r *SQLiteRepository) ListReadings(ctx context.Context, period core.Period) ([]core.Reading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rd.room_id, rd.period, rd.prev_electricity, rd.curr_electricity,
		        rd.prev_water, rd.curr_water, rd.other_fees, rd.paid, rd.receipt_image
		 FROM readings rd
		 JOIN rooms rm ON rm.id = rd.room_id
		 WHERE rd.period = ?
		 ORDER BY rm.position, rm.id`, string(period))
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []core.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, *reading)
	}
	return readings, rows.Err()
}

// InsertReading implements ledger.Store. The composite primary key
// enforces the at-most-one-record invariant; a key conflict surfaces as
// core.ErrReadingExists.
func (r *SQLiteRepository) InsertReading(ctx context.Context, reading core.Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO readings (room_id, period, prev_electricity, curr_electricity,
		                       prev_water, curr_water, other_fees, paid, receipt_image,
		                       sync_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')
		 ON CONFLICT (room_id, period) DO NOTHING`,
		reading.RoomID, string(reading.Period),
		reading.PrevElectricity, reading.CurrElectricity,
		reading.PrevWater, reading.CurrWater,
		reading.OtherFees.Amount, boolToInt(reading.Paid), reading.ReceiptImage)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	// DO NOTHING reports the key conflict through the row count.
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrReadingExists
	}

	slog.InfoContext(ctx, "Reading created",
		"room_id", reading.RoomID,
		"period", string(reading.Period))
	return nil
}

// UpdateReading implements ledger.Store. Every update re-queues the row
// for cloud sync.
func (r *SQLiteRepository) UpdateReading(ctx context.Context, reading core.Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE readings
		 SET prev_electricity = ?, curr_electricity = ?,
		     prev_water = ?, curr_water = ?,
		     other_fees = ?, paid = ?, receipt_image = ?,
		     sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
		 WHERE room_id = ? AND period = ?`,
		reading.PrevElectricity, reading.CurrElectricity,
		reading.PrevWater, reading.CurrWater,
		reading.OtherFees.Amount, boolToInt(reading.Paid), reading.ReceiptImage,
		reading.RoomID, string(reading.Period))
	if err != nil {
		return fmt.Errorf("update reading: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrReadingNotFound
	}
	return nil
}

// PendingSyncReading identifies a ledger row awaiting cloud sync.
type PendingSyncReading struct {
	RoomID string
	Period core.Period
}

// GetPendingSyncReadings returns up to limit rows queued for cloud sync.
func (r *SQLiteRepository) GetPendingSyncReadings(ctx context.Context, limit int) ([]PendingSyncReading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT room_id, period FROM readings
		 WHERE sync_status = 'pending'
		 ORDER BY updated_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync readings: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncReading
	for rows.Next() {
		var p PendingSyncReading
		var period string
		if err := rows.Scan(&p.RoomID, &period); err != nil {
			return nil, fmt.Errorf("scan pending reading: %w", err)
		}
		p.Period = core.Period(period)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced records a successful cloud sync for one row.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, roomID string, period core.Period) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE readings SET sync_status = 'synced' WHERE room_id = ? AND period = ?`,
		roomID, string(period))
	if err != nil {
		return fmt.Errorf("mark reading synced: %w", err)
	}
	return nil
}

// MarkSyncError flags a row whose cloud sync failed; it stays out of the
// pending queue until the next mutation re-queues it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, roomID string, period core.Period) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE readings SET sync_status = 'error' WHERE room_id = ? AND period = ?`,
		roomID, string(period))
	if err != nil {
		return fmt.Errorf("mark reading sync error: %w", err)
	}
	slog.WarnContext(ctx, "Reading marked with sync error",
		"room_id", roomID, "period", string(period))
	return nil
}

// Settings keys as stored in the settings table. The names match the
// logical keys of the original key-value store.
const (
	keyAdminPIN           = "adminPin"
	keyElecRate           = "globalElecRate"
	keyWaterRate          = "globalWaterRate"
	keyServiceFee         = "globalServiceFee"
	keyOtherFee           = "globalOtherFee"
	keyPaymentQRCode      = "paymentQrCode"
	keyPaymentDescription = "paymentDescription"
	keyCloudAPIURL        = "cloudApiUrl"
)

// LoadSettings reads the admin configuration, falling back to defaults
// for any missing key.
func (r *SQLiteRepository) LoadSettings(ctx context.Context) (core.Settings, error) {
	settings := core.DefaultSettings()

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case keyAdminPIN:
			settings.AdminPIN = value
		case keyElecRate:
			settings.Rates.ElectricityRate.Amount = parseAmountOr(value, settings.Rates.ElectricityRate.Amount)
		case keyWaterRate:
			settings.Rates.WaterRate.Amount = parseAmountOr(value, settings.Rates.WaterRate.Amount)
		case keyServiceFee:
			settings.Rates.ServiceFee.Amount = parseAmountOr(value, settings.Rates.ServiceFee.Amount)
		case keyOtherFee:
			settings.Rates.OtherFee.Amount = parseAmountOr(value, settings.Rates.OtherFee.Amount)
		case keyPaymentQRCode:
			settings.PaymentQRCode = value
		case keyPaymentDescription:
			settings.PaymentDescription = value
		case keyCloudAPIURL:
			settings.CloudAPIURL = value
		}
	}
	return settings, rows.Err()
}

// SaveSettings writes the full admin configuration in one transaction.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, settings core.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyAdminPIN:           settings.AdminPIN,
		keyElecRate:           strconv.FormatInt(settings.Rates.ElectricityRate.Amount, 10),
		keyWaterRate:          strconv.FormatInt(settings.Rates.WaterRate.Amount, 10),
		keyServiceFee:         strconv.FormatInt(settings.Rates.ServiceFee.Amount, 10),
		keyOtherFee:           strconv.FormatInt(settings.Rates.OtherFee.Amount, 10),
		keyPaymentQRCode:      settings.PaymentQRCode,
		keyPaymentDescription: settings.PaymentDescription,
		keyCloudAPIURL:        settings.CloudAPIURL,
	}
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}

	slog.InfoContext(ctx, "Settings saved")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*core.Reading, error) {
	var reading core.Reading
	var period string
	var paid int
	err := row.Scan(&reading.RoomID, &period,
		&reading.PrevElectricity, &reading.CurrElectricity,
		&reading.PrevWater, &reading.CurrWater,
		&reading.OtherFees.Amount, &paid, &reading.ReceiptImage)
	if err != nil {
		return nil, err
	}
	reading.Period = core.Period(period)
	reading.Paid = paid != 0
	return &reading, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseAmountOr(s string, fallback int64) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
