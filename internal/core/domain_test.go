package core

import "testing"

func TestReadingValidate(t *testing.T) {
	good := Reading{RoomID: "room-1", Period: "2024-05", CurrElectricity: 120, CurrWater: 8}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Reading{
		{RoomID: "", Period: "2024-05"},
		{RoomID: "room-1", Period: "2024-13"},
		{RoomID: "room-1", Period: "2024-05", CurrElectricity: -1},
		{RoomID: "room-1", Period: "2024-05", CurrWater: -1},
		{RoomID: "room-1", Period: "2024-05", OtherFees: Money{Amount: -100}},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestUsageFloor(t *testing.T) {
	cases := []struct {
		prev, curr int64
		want       int64
	}{
		{100, 150, 50},
		{100, 100, 0},
		{100, 80, 0}, // meter rollback clamps, never negative
		{0, 0, 0},
	}
	for _, tc := range cases {
		r := Reading{PrevElectricity: tc.prev, CurrElectricity: tc.curr, PrevWater: tc.prev, CurrWater: tc.curr}
		if got := r.ElectricityUsage(); got != tc.want {
			t.Fatalf("elec usage %d->%d = %d, want %d", tc.prev, tc.curr, got, tc.want)
		}
		if got := r.WaterUsage(); got != tc.want {
			t.Fatalf("water usage %d->%d = %d, want %d", tc.prev, tc.curr, got, tc.want)
		}
	}
}

func TestSeedFrom(t *testing.T) {
	prior := Reading{
		RoomID:          "room-1",
		Period:          "2024-04",
		PrevElectricity: 100,
		CurrElectricity: 120,
		PrevWater:       10,
		CurrWater:       13,
		OtherFees:       Money{Amount: 50000},
		Paid:            true,
		ReceiptImage:    "data:image/png;base64,xxxx",
	}
	seeded := SeedFrom("room-1", "2024-05", &prior)

	if seeded.PrevElectricity != 120 || seeded.CurrElectricity != 120 {
		t.Fatalf("electricity seed = %d/%d, want 120/120", seeded.PrevElectricity, seeded.CurrElectricity)
	}
	if seeded.PrevWater != 13 || seeded.CurrWater != 13 {
		t.Fatalf("water seed = %d/%d, want 13/13", seeded.PrevWater, seeded.CurrWater)
	}
	if seeded.OtherFees.Amount != 0 || seeded.Paid || seeded.ReceiptImage != "" {
		t.Fatalf("seeded reading must start unpaid with no fees or evidence: %+v", seeded)
	}
	if seeded.ElectricityUsage() != 0 || seeded.WaterUsage() != 0 {
		t.Fatalf("fresh period must open with zero usage")
	}
}

func TestSeedFromNoPrior(t *testing.T) {
	seeded := SeedFrom("room-2", "2024-05", nil)
	if seeded.PrevElectricity != 0 || seeded.CurrElectricity != 0 || seeded.PrevWater != 0 || seeded.CurrWater != 0 {
		t.Fatalf("no-prior seed must zero all meters: %+v", seeded)
	}
}

func TestDefaultRooms(t *testing.T) {
	rooms := DefaultRooms()
	if len(rooms) != 8 {
		t.Fatalf("expected 8 rooms, got %d", len(rooms))
	}
	seen := map[string]bool{}
	for _, r := range rooms {
		if err := r.Validate(); err != nil {
			t.Fatalf("default room %q invalid: %v", r.ID, err)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate room id %q", r.ID)
		}
		seen[r.ID] = true
	}
	if rooms[0].ID != "room-1" || rooms[7].ID != "room-8" {
		t.Fatalf("unexpected room ids: %q .. %q", rooms[0].ID, rooms[7].ID)
	}
}
