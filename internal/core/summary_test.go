package core

import "testing"

func TestSummarizePeriod(t *testing.T) {
	rooms := []Room{
		{ID: "room-1", Name: "Phòng 1", BaseRent: Money{Amount: 3500000}},
		{ID: "room-2", Name: "Phòng 2", BaseRent: Money{Amount: 3500000}},
		{ID: "room-3", Name: "Phòng 3", BaseRent: Money{Amount: 3500000}},
	}
	readings := []Reading{
		{RoomID: "room-1", Period: "2024-05", PrevElectricity: 100, CurrElectricity: 150, PrevWater: 10, CurrWater: 13, OtherFees: Money{Amount: 50000}, Paid: true},
		{RoomID: "room-2", Period: "2024-05", Paid: false},
		// room-3 has no reading and must not contribute.
	}

	s := SummarizePeriod(rooms, readings, testRates)

	const room1 = 3950000
	const room2 = 3650000
	if s.Expected.Amount != room1+room2 {
		t.Fatalf("expected = %d, want %d", s.Expected.Amount, room1+room2)
	}
	if s.Collected.Amount != room1 {
		t.Fatalf("collected = %d, want %d", s.Collected.Amount, room1)
	}
	if s.Unpaid.Amount != room2 {
		t.Fatalf("unpaid = %d, want %d", s.Unpaid.Amount, room2)
	}
	if s.PaidCount != 1 || s.UnpaidCount != 1 {
		t.Fatalf("paid/unpaid counts = %d/%d, want 1/1", s.PaidCount, s.UnpaidCount)
	}
}

func TestSummarizePeriodEmpty(t *testing.T) {
	s := SummarizePeriod([]Room{{ID: "room-1", Name: "Phòng 1", BaseRent: Money{Amount: 3500000}}}, nil, testRates)
	if s.Expected.Amount != 0 || s.Collected.Amount != 0 || s.Unpaid.Amount != 0 {
		t.Fatalf("empty period must sum to zero: %+v", s)
	}
}

func TestSummarizePeriodIgnoresUnknownRoom(t *testing.T) {
	rooms := []Room{{ID: "room-1", Name: "Phòng 1", BaseRent: Money{Amount: 3500000}}}
	readings := []Reading{
		{RoomID: "room-1", Period: "2024-05", Paid: true},
		{RoomID: "ghost", Period: "2024-05", Paid: true},
	}
	s := SummarizePeriod(rooms, readings, testRates)
	if s.Expected.Amount != 3650000 {
		t.Fatalf("reading without a matching room must be ignored: expected = %d", s.Expected.Amount)
	}
}
