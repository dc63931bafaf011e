package core

import (
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "R$ 0,00"},
		{50, "R$ 50,00"},
		{1234.5, "R$ 1.234,50"},
		{1234567.891, "R$ 1.234.567,89"},
		{-3, "-R$ 3,00"},
		{-0.004, "R$ 0,00"},
		{999.999, "R$ 1.000,00"},
	}
	for _, tc := range cases {
		if got := FormatBRL(tc.in); got != tc.out {
			t.Fatalf("FormatBRL(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.01, 1, 12.34, 999.99, 1000, 98765.43, 1234567.89, -0.5, -4321.1} {
		got, err := ParseBRL(FormatBRL(v))
		if err != nil {
			t.Fatalf("ParseBRL(FormatBRL(%v)): %v", v, err)
		}
		if math.Abs(got-v) > 0.005 {
			t.Fatalf("round trip of %v gave %v", v, got)
		}
	}
}

func TestParseBRLRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "R$", "R$ abc", "-"} {
		if _, err := ParseBRL(s); err == nil {
			t.Fatalf("%q expected error", s)
		}
	}
}
