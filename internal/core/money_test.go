package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"0", 0, true},
		{"3500", 3500, true},
		{"3500000", 3500000, true},
		{"3.500.000", 3500000, true},
		{"3,500,000", 3500000, true},
		{" 150000 ", 150000, true},
		{"-5", 0, false},
		{"+5", 0, false},
		{"abc", 0, false},
		{"12x", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatVND(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 ₫"},
		{500, "500 ₫"},
		{3500, "3.500 ₫"},
		{150000, "150.000 ₫"},
		{3500000, "3.500.000 ₫"},
		{-25000, "-25.000 ₫"},
	}
	for _, tc := range cases {
		if got := (Money{Amount: tc.in}).FormatVND(); got != tc.want {
			t.Fatalf("FormatVND(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
