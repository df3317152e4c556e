// Package core holds the billing domain: periods, rooms, readings,
// tariff math and monetary parsing/formatting.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in Vietnamese đồng. VND has no fractional unit, so
// the smallest currency unit is the đồng itself and all arithmetic stays
// on int64 to avoid floating-point drift.
type Money struct {
	Amount int64
}

func (m Money) Validate() error {
	if m.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount + o.Amount}
}

// Sub returns the difference of two amounts.
func (m Money) Sub(o Money) Money {
	return Money{Amount: m.Amount - o.Amount}
}

// MulUnits scales a per-unit rate by a usage count.
func (m Money) MulUnits(units int64) Money {
	return Money{Amount: m.Amount * units}
}

// ParseAmount converts a user-entered amount to đồng. Digit grouping with
// dots or commas is tolerated ("3.500.000" and "3,500,000" both parse to
// 3500000); fractional input is rejected since VND has no subunit.
// Negative amounts are rejected.
//
// Examples:
//
//	ParseAmount("3500000")   -> 3500000, nil
//	ParseAmount("3.500.000") -> 3500000, nil
//	ParseAmount("-5")        -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	// Strip grouping separators; any remaining non-digit is an error.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatVND renders an amount with Vietnamese digit grouping and the
// currency suffix, e.g. 3500000 -> "3.500.000 ₫".
func (m Money) FormatVND() string {
	neg := m.Amount < 0
	v := m.Amount
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	b.WriteString(" ₫")
	return b.String()
}
