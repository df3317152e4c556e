// Package export renders the monthly billing report as CSV for
// spreadsheet programs.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"rentledger/internal/core"
)

// utf8BOM keeps Excel from mangling the Vietnamese headers.
const utf8BOM = "\ufeff"

var reportHeaders = []string{
	"Phòng",
	"Chỉ số Điện Cũ",
	"Chỉ số Điện Mới",
	"Tiêu thụ Điện",
	"Chỉ số Nước Cũ",
	"Chỉ số Nước Mới",
	"Tiêu thụ Nước",
	"Tiền Phòng",
	"Tổng Tiền",
	"Trạng thái",
}

// FileName is the download name for one period's report.
func FileName(period core.Period) string {
	return fmt.Sprintf("Bao_Cao_Nha_Tro_Thang_%s.csv", period)
}

// WriteMonthlyReport streams the period report to w. Rooms without a
// reading in the period are omitted, matching the summary semantics.
func WriteMonthlyReport(w io.Writer, rooms []core.Room, readings []core.Reading, rates core.GlobalRates) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	byRoom := make(map[string]*core.Reading, len(readings))
	for i := range readings {
		byRoom[readings[i].RoomID] = &readings[i]
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for _, room := range rooms {
		reading, ok := byRoom[room.ID]
		if !ok {
			continue
		}
		status := "Chưa thanh toán"
		if reading.Paid {
			status = "Đã thanh toán"
		}
		total := core.RoomTotal(room, reading, rates)
		row := []string{
			room.Name,
			strconv.FormatInt(reading.PrevElectricity, 10),
			strconv.FormatInt(reading.CurrElectricity, 10),
			strconv.FormatInt(reading.ElectricityUsage(), 10),
			strconv.FormatInt(reading.PrevWater, 10),
			strconv.FormatInt(reading.CurrWater, 10),
			strconv.FormatInt(reading.WaterUsage(), 10),
			strconv.FormatInt(room.BaseRent.Amount, 10),
			strconv.FormatInt(total.Amount, 10),
			status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
