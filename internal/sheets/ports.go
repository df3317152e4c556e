package sheets

import (
	"context"

	"rentledger/internal/core"
)

// BillingRow is the flattened billing line pushed to the cloud
// spreadsheet, one row per room and period.
type BillingRow struct {
	RoomID           string
	Period           core.Period
	RoomName         string
	PrevElectricity  int64
	CurrElectricity  int64
	ElectricityUsage int64
	PrevWater        int64
	CurrWater        int64
	WaterUsage       int64
	BaseRent         core.Money
	Total            core.Money
	Paid             bool
}

// NewBillingRow derives the synced row from ledger state and the current
// rates.
func NewBillingRow(room core.Room, reading core.Reading, rates core.GlobalRates) BillingRow {
	return BillingRow{
		RoomID:           room.ID,
		Period:           reading.Period,
		RoomName:         room.Name,
		PrevElectricity:  reading.PrevElectricity,
		CurrElectricity:  reading.CurrElectricity,
		ElectricityUsage: reading.ElectricityUsage(),
		PrevWater:        reading.PrevWater,
		CurrWater:        reading.CurrWater,
		WaterUsage:       reading.WaterUsage(),
		BaseRent:         room.BaseRent,
		Total:            core.RoomTotal(room, &reading, rates),
		Paid:             reading.Paid,
	}
}

// Ports for outbound cloud-sync adapters.
type (
	// RowWriter pushes one billing row to the cloud sheet, replacing an
	// existing row with the same (room, period) key.
	RowWriter interface {
		Upsert(ctx context.Context, row BillingRow) (rowRef string, err error)
	}
)
