package core

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Room is a rentable unit. Lifecycle is provisioning-time: rooms are
	// seeded once and mutated through admin settings, never deleted.
	Room struct {
		ID       string
		Name     string
		BaseRent Money
		PIN      string
	}

	// Reading is the billing record for one room in one period. At most
	// one Reading exists per (RoomID, Period) pair.
	Reading struct {
		RoomID          string
		Period          Period
		PrevElectricity int64
		CurrElectricity int64
		PrevWater       int64
		CurrWater       int64
		OtherFees       Money
		Paid            bool
		// ReceiptImage holds proof-of-payment as a data URI. Empty means
		// no evidence has been uploaded.
		ReceiptImage string
	}

	// GlobalRates are the process-wide tariff rates. They are not
	// versioned per period: recomputing an old period uses the current
	// rates.
	GlobalRates struct {
		ElectricityRate Money
		WaterRate       Money
		ServiceFee      Money
		OtherFee        Money
	}

	// Settings is the mutable admin configuration, loaded at startup and
	// written back on every change.
	Settings struct {
		AdminPIN           string
		Rates              GlobalRates
		PaymentQRCode      string
		PaymentDescription string
		CloudAPIURL        string
	}

	// MeterKind selects which meter a correction targets.
	MeterKind string
)

const (
	MeterElectricity MeterKind = "electricity"
	MeterWater       MeterKind = "water"
)

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyRoomID     = errors.New("empty room id")
	ErrEmptyRoomName   = errors.New("empty room name")
	ErrNegativeMeter   = errors.New("negative meter value")
	ErrUnknownMeter    = errors.New("unknown meter kind")
	ErrRoomNotFound    = errors.New("room not found")
	ErrReadingNotFound = errors.New("reading not found")
	ErrReadingExists   = errors.New("reading already exists for room and period")
	ErrEmptyPIN        = errors.New("empty pin")
)

// DefaultSettings mirrors the values a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		AdminPIN: "1234",
		Rates: GlobalRates{
			ElectricityRate: Money{Amount: 3500},
			WaterRate:       Money{Amount: 25000},
			ServiceFee:      Money{Amount: 150000},
			OtherFee:        Money{Amount: 0},
		},
		PaymentDescription: "Chuyển khoản: [Ngân hàng] - [Số tài khoản] - [Tên chủ tài khoản]",
	}
}

// DefaultRooms returns the fixed provisioning set: eight rooms with the
// standard base rent and PIN.
func DefaultRooms() []Room {
	rooms := make([]Room, 8)
	for i := range rooms {
		rooms[i] = Room{
			ID:       fmt.Sprintf("room-%d", i+1),
			Name:     fmt.Sprintf("Phòng %d", i+1),
			BaseRent: Money{Amount: 3500000},
			PIN:      "1234",
		}
	}
	return rooms
}

func (k MeterKind) Validate() error {
	switch k {
	case MeterElectricity, MeterWater:
		return nil
	default:
		return ErrUnknownMeter
	}
}

func (r Room) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyRoomID
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyRoomName
	}
	if r.BaseRent.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g GlobalRates) Validate() error {
	for _, m := range []Money{g.ElectricityRate, g.WaterRate, g.ServiceFee, g.OtherFee} {
		if m.Amount < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.AdminPIN) == "" {
		return ErrEmptyPIN
	}
	return s.Rates.Validate()
}

func (r Reading) Validate() error {
	if strings.TrimSpace(r.RoomID) == "" {
		return ErrEmptyRoomID
	}
	if err := r.Period.Validate(); err != nil {
		return err
	}
	if r.CurrElectricity < 0 || r.CurrWater < 0 {
		return ErrNegativeMeter
	}
	if r.OtherFees.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ElectricityUsage is the billed consumption for the period. A current
// value below the starting value (meter reset or misentry) clamps to zero
// instead of producing a negative charge.
func (r Reading) ElectricityUsage() int64 {
	if u := r.CurrElectricity - r.PrevElectricity; u > 0 {
		return u
	}
	return 0
}

// WaterUsage is the billed water consumption, floored at zero like
// ElectricityUsage.
func (r Reading) WaterUsage() int64 {
	if u := r.CurrWater - r.PrevWater; u > 0 {
		return u
	}
	return 0
}

// SeedFrom builds the opening record for a period from the prior period's
// record. Meters start at the prior ending values so the new period opens
// with zero usage; a nil prior record seeds everything to zero.
func SeedFrom(roomID string, period Period, prior *Reading) Reading {
	seeded := Reading{
		RoomID: roomID,
		Period: period,
	}
	if prior != nil {
		seeded.PrevElectricity = prior.CurrElectricity
		seeded.CurrElectricity = prior.CurrElectricity
		seeded.PrevWater = prior.CurrWater
		seeded.CurrWater = prior.CurrWater
	}
	return seeded
}
