package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period identifies a billing month in canonical "YYYY-MM" form.
// The lexical order of the canonical form matches chronological order,
// so periods compare with plain string comparison.
type Period string

// FormatPeriod builds the canonical identifier for a year and month.
func FormatPeriod(year, month int) Period {
	return Period(fmt.Sprintf("%04d-%02d", year, month))
}

// CurrentPeriod returns the wall-clock month.
func CurrentPeriod() Period {
	now := time.Now()
	return FormatPeriod(now.Year(), int(now.Month()))
}

// Split returns the year and month parts. Input is assumed well-formed;
// malformed periods split to (0, 0).
func (p Period) Split() (year, month int) {
	s := string(p)
	i := strings.IndexByte(s, '-')
	if i < 0 {
		return 0, 0
	}
	year, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, 0
	}
	month, err = strconv.Atoi(s[i+1:])
	if err != nil {
		return 0, 0
	}
	return year, month
}

// Previous shifts back one calendar month, wrapping January to December.
func (p Period) Previous() Period {
	year, month := p.Split()
	month--
	if month < 1 {
		month = 12
		year--
	}
	return FormatPeriod(year, month)
}

// Next shifts forward one calendar month, wrapping December to January.
func (p Period) Next() Period {
	year, month := p.Split()
	month++
	if month > 12 {
		month = 1
		year++
	}
	return FormatPeriod(year, month)
}

// Validate checks the canonical form and month range.
func (p Period) Validate() error {
	year, month := p.Split()
	if year < 1 || month < 1 || month > 12 {
		return ErrInvalidPeriod
	}
	if p != FormatPeriod(year, month) {
		return ErrInvalidPeriod
	}
	return nil
}
