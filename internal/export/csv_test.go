package export

import (
	"strings"
	"testing"

	"rentledger/internal/core"
)

func TestWriteMonthlyReport(t *testing.T) {
	rooms := []core.Room{
		{ID: "room-1", Name: "Phòng 1", BaseRent: core.Money{Amount: 3500000}},
		{ID: "room-2", Name: "Phòng 2", BaseRent: core.Money{Amount: 3500000}},
	}
	readings := []core.Reading{{
		RoomID: "room-1", Period: "2024-05",
		PrevElectricity: 100, CurrElectricity: 150,
		PrevWater: 10, CurrWater: 13,
		Paid: true,
	}}
	rates := core.DefaultSettings().Rates

	var sb strings.Builder
	if err := WriteMonthlyReport(&sb, rooms, readings, rates); err != nil {
		t.Fatalf("WriteMonthlyReport: %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "\ufeff") {
		t.Error("output missing UTF-8 BOM")
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header plus one data row:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(strings.TrimPrefix(lines[0], "\ufeff"), "Phòng,") {
		t.Errorf("header = %q", lines[0])
	}
	// 3_500_000 + 50*3_500 + 3*25_000 + 150_000
	want := "Phòng 1,100,150,50,10,13,3,3500000,3900000,Đã thanh toán"
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
	if strings.Contains(out, "Phòng 2") {
		t.Error("room without reading must be omitted")
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("2024-05"); got != "Bao_Cao_Nha_Tro_Thang_2024-05.csv" {
		t.Errorf("FileName = %q", got)
	}
}
