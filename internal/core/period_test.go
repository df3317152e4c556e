package core

import "testing"

func TestFormatPeriod(t *testing.T) {
	cases := []struct {
		year, month int
		want        Period
	}{
		{2024, 1, "2024-01"},
		{2024, 12, "2024-12"},
		{2023, 9, "2023-09"},
	}
	for _, tc := range cases {
		if got := FormatPeriod(tc.year, tc.month); got != tc.want {
			t.Fatalf("FormatPeriod(%d, %d) = %q, want %q", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestPeriodAdjacency(t *testing.T) {
	if got := Period("2024-01").Previous(); got != "2023-12" {
		t.Fatalf("previous of 2024-01 = %q, want 2023-12", got)
	}
	if got := Period("2023-12").Next(); got != "2024-01" {
		t.Fatalf("next of 2023-12 = %q, want 2024-01", got)
	}
	if got := Period("2024-06").Next(); got != "2024-07" {
		t.Fatalf("next of 2024-06 = %q, want 2024-07", got)
	}

	// next(previous(p)) == p across a full year including the wrap.
	for month := 1; month <= 12; month++ {
		p := FormatPeriod(2024, month)
		if got := p.Previous().Next(); got != p {
			t.Fatalf("next(previous(%q)) = %q", p, got)
		}
	}
}

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		p  Period
		ok bool
	}{
		{"2024-01", true},
		{"2024-12", true},
		{"2024-13", false},
		{"2024-00", false},
		{"2024-1", false},
		{"202401", false},
		{"", false},
	}
	for _, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%q expected valid, got %v", tc.p, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.p)
		}
	}
}
