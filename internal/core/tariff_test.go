package core

import "testing"

var testRates = GlobalRates{
	ElectricityRate: Money{Amount: 3500},
	WaterRate:       Money{Amount: 25000},
	ServiceFee:      Money{Amount: 150000},
	OtherFee:        Money{Amount: 0},
}

func TestRoomTotal(t *testing.T) {
	room := Room{ID: "room-1", Name: "Phòng 1", BaseRent: Money{Amount: 3500000}}
	reading := Reading{
		RoomID:          "room-1",
		Period:          "2024-05",
		PrevElectricity: 100,
		CurrElectricity: 150,
		PrevWater:       10,
		CurrWater:       13,
		OtherFees:       Money{Amount: 50000},
	}

	// 3,500,000 + 50*3,500 + 3*25,000 + 150,000 + 0 + 50,000
	if got := RoomTotal(room, &reading, testRates); got.Amount != 3950000 {
		t.Fatalf("total = %d, want 3950000", got.Amount)
	}
}

func TestRoomTotalNoReading(t *testing.T) {
	room := Room{ID: "room-1", Name: "Phòng 1", BaseRent: Money{Amount: 3500000}}
	if got := RoomTotal(room, nil, testRates); got.Amount != 3650000 {
		t.Fatalf("no-reading total = %d, want 3650000", got.Amount)
	}
}

func TestRoomTotalClampsNegativeUsage(t *testing.T) {
	room := Room{ID: "room-1", Name: "Phòng 1", BaseRent: Money{Amount: 3500000}}
	reading := Reading{
		RoomID:          "room-1",
		Period:          "2024-05",
		PrevElectricity: 100,
		CurrElectricity: 80, // rollback
		PrevWater:       20,
		CurrWater:       20,
	}
	if got := RoomTotal(room, &reading, testRates); got.Amount != 3650000 {
		t.Fatalf("clamped total = %d, want 3650000", got.Amount)
	}
}
