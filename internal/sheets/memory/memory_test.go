package memory

import (
	"context"
	"testing"

	"rentledger/internal/core"
	"rentledger/internal/sheets"
)

func TestUpsertReplacesByKey(t *testing.T) {
	ctx := context.Background()
	store := New()

	row := sheets.BillingRow{RoomID: "room-1", Period: "2024-05", RoomName: "Phòng 1", Total: core.Money{Amount: 3650000}}
	if _, err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	row.Total = core.Money{Amount: 3950000}
	row.Paid = true
	if _, err := store.Upsert(ctx, row); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected one row per key, got %d", store.Len())
	}
	got, ok := store.Row("room-1", "2024-05")
	if !ok {
		t.Fatalf("row missing")
	}
	if got.Total.Amount != 3950000 || !got.Paid {
		t.Fatalf("row not replaced: %+v", got)
	}
}

func TestNewBillingRow(t *testing.T) {
	room := core.Room{ID: "room-1", Name: "Phòng 1", BaseRent: core.Money{Amount: 3500000}}
	reading := core.Reading{
		RoomID:          "room-1",
		Period:          "2024-05",
		PrevElectricity: 100,
		CurrElectricity: 150,
		PrevWater:       10,
		CurrWater:       13,
		OtherFees:       core.Money{Amount: 50000},
		Paid:            true,
	}
	rates := core.GlobalRates{
		ElectricityRate: core.Money{Amount: 3500},
		WaterRate:       core.Money{Amount: 25000},
		ServiceFee:      core.Money{Amount: 150000},
	}

	row := sheets.NewBillingRow(room, reading, rates)
	if row.ElectricityUsage != 50 || row.WaterUsage != 3 {
		t.Fatalf("usage = %d/%d, want 50/3", row.ElectricityUsage, row.WaterUsage)
	}
	if row.Total.Amount != 3950000 {
		t.Fatalf("total = %d, want 3950000", row.Total.Amount)
	}
	if !row.Paid || row.RoomName != "Phòng 1" {
		t.Fatalf("row fields wrong: %+v", row)
	}
}
