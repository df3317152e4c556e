package ledger

import (
	"context"
	"errors"
	"testing"

	"rentledger/internal/core"
)

func openPeriods(t *testing.T, svc *Service, periods ...core.Period) {
	t.Helper()
	for _, p := range periods {
		if _, err := svc.OpenPeriod(context.Background(), p); err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
	}
}

func TestSetMeterReadingPropagatesOneHop(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(twoRooms()))
	openPeriods(t, svc, "2024-05", "2024-06", "2024-07")

	if err := svc.SetMeterReading(ctx, "room-1", "2024-05", core.MeterElectricity, 200); err != nil {
		t.Fatalf("set meter: %v", err)
	}

	may, _ := svc.Reading(ctx, "room-1", "2024-05")
	if may.CurrElectricity != 200 {
		t.Fatalf("may curr = %d, want 200", may.CurrElectricity)
	}
	june, _ := svc.Reading(ctx, "room-1", "2024-06")
	if june.PrevElectricity != 200 {
		t.Fatalf("june prev = %d, want 200 (forward propagation)", june.PrevElectricity)
	}
	// Exactly one hop: July keeps its seeded value.
	july, _ := svc.Reading(ctx, "room-1", "2024-07")
	if july.PrevElectricity != 0 {
		t.Fatalf("july prev = %d, propagation must not cascade", july.PrevElectricity)
	}
	// Other rooms untouched.
	other, _ := svc.Reading(ctx, "room-2", "2024-06")
	if other.PrevElectricity != 0 {
		t.Fatalf("room-2 must be untouched, prev = %d", other.PrevElectricity)
	}
}

func TestSetMeterReadingWaterPropagation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(twoRooms()))
	openPeriods(t, svc, "2024-05", "2024-06")

	if err := svc.SetMeterReading(ctx, "room-1", "2024-05", core.MeterWater, 33); err != nil {
		t.Fatalf("set water: %v", err)
	}
	june, _ := svc.Reading(ctx, "room-1", "2024-06")
	if june.PrevWater != 33 {
		t.Fatalf("june prevWater = %d, want 33", june.PrevWater)
	}
	if june.PrevElectricity != 0 {
		t.Fatalf("electricity must be untouched by a water correction")
	}
}

func TestSetMeterReadingNoNextPeriod(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(twoRooms()))
	openPeriods(t, svc, "2024-05")

	if err := svc.SetMeterReading(ctx, "room-1", "2024-05", core.MeterElectricity, 150); err != nil {
		t.Fatalf("set meter: %v", err)
	}
	if next, _ := svc.Reading(ctx, "room-1", "2024-06"); next != nil {
		t.Fatalf("propagation must not create the next period's record")
	}

	// The later rollover seeds from the corrected value.
	openPeriods(t, svc, "2024-06")
	june, _ := svc.Reading(ctx, "room-1", "2024-06")
	if june.PrevElectricity != 150 || june.CurrElectricity != 150 {
		t.Fatalf("june seed = %d/%d, want 150/150", june.PrevElectricity, june.CurrElectricity)
	}
}

func TestSetMeterReadingValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(twoRooms()))
	openPeriods(t, svc, "2024-05")

	if err := svc.SetMeterReading(ctx, "room-1", "2024-05", core.MeterElectricity, -1); !errors.Is(err, core.ErrNegativeMeter) {
		t.Fatalf("expected ErrNegativeMeter, got %v", err)
	}
	if err := svc.SetMeterReading(ctx, "room-1", "2024-05", "gas", 5); !errors.Is(err, core.ErrUnknownMeter) {
		t.Fatalf("expected ErrUnknownMeter, got %v", err)
	}
	if err := svc.SetMeterReading(ctx, "room-1", "2024-09", core.MeterElectricity, 5); !errors.Is(err, core.ErrReadingNotFound) {
		t.Fatalf("expected ErrReadingNotFound for unopened period, got %v", err)
	}
}

func TestFieldMutationsDoNotPropagate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(twoRooms()))
	openPeriods(t, svc, "2024-05", "2024-06")

	if err := svc.SetOtherFees(ctx, "room-1", "2024-05", core.Money{Amount: 50000}); err != nil {
		t.Fatalf("set fees: %v", err)
	}
	if err := svc.SetPaid(ctx, "room-1", "2024-05", true); err != nil {
		t.Fatalf("set paid: %v", err)
	}
	if err := svc.SetReceiptEvidence(ctx, "room-1", "2024-05", "data:image/png;base64,abcd"); err != nil {
		t.Fatalf("set receipt: %v", err)
	}

	may, _ := svc.Reading(ctx, "room-1", "2024-05")
	if may.OtherFees.Amount != 50000 || !may.Paid || may.ReceiptImage == "" {
		t.Fatalf("field updates missing: %+v", may)
	}
	june, _ := svc.Reading(ctx, "room-1", "2024-06")
	if june.OtherFees.Amount != 0 || june.Paid || june.ReceiptImage != "" {
		t.Fatalf("non-meter updates must affect only the targeted record: %+v", june)
	}
}

func TestSetReceiptEvidenceClear(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(twoRooms()))
	openPeriods(t, svc, "2024-05")

	if err := svc.SetReceiptEvidence(ctx, "room-1", "2024-05", "data:image/png;base64,abcd"); err != nil {
		t.Fatalf("set receipt: %v", err)
	}
	if err := svc.SetReceiptEvidence(ctx, "room-1", "2024-05", ""); err != nil {
		t.Fatalf("clear receipt: %v", err)
	}
	r, _ := svc.Reading(ctx, "room-1", "2024-05")
	if r.ReceiptImage != "" {
		t.Fatalf("receipt must be cleared")
	}
}

func TestSetOtherFeesRejectsNegative(t *testing.T) {
	svc := NewService(NewMemStore(twoRooms()))
	openPeriods(t, svc, "2024-05")
	if err := svc.SetOtherFees(context.Background(), "room-1", "2024-05", core.Money{Amount: -1}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestMemStoreInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(twoRooms())
	r := core.Reading{RoomID: "room-1", Period: "2024-05"}
	if err := store.InsertReading(ctx, r); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := store.InsertReading(ctx, r); !errors.Is(err, core.ErrReadingExists) {
		t.Fatalf("expected ErrReadingExists, got %v", err)
	}
}
