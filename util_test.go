package main

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{"BRK.B", "BRK-B"},
		{"brk b", "BRK-B"},
		{"  brk.b  ", "BRK-B"},
		{"RDS A", "RDS-A"},
		{"", ""},
	}
	for _, tt := range tests {
		got := normalizeTicker(tt.in)
		if got != tt.want {
			t.Errorf("normalizeTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTickerIdempotent(t *testing.T) {
	for _, in := range []string{"BRK.B", "brk b", "aapl", "RDS A", "x.y z"} {
		once := normalizeTicker(in)
		twice := normalizeTicker(once)
		if once != twice {
			t.Errorf("normalizeTicker not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.0},  // float64 1.005 is just below the midpoint
		{1.015, 1.01}, // so is 1.015
		{123.456, 123.46},
		{0.994, 0.99},
	}
	for _, tt := range tests {
		if got := roundPrice(tt.in); got != tt.want {
			t.Errorf("roundPrice(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatOptPrice(t *testing.T) {
	if got := FormatOptPrice(nil); got != "n/a" {
		t.Errorf("FormatOptPrice(nil) = %q, want n/a", got)
	}
	if got := FormatOptPrice(ptr(12.5)); got != "$12.50" {
		t.Errorf("FormatOptPrice(12.5) = %q, want $12.50", got)
	}
}

func TestFormatDollars(t *testing.T) {
	if got := FormatDollars(1234567); got != "$1,234,567" {
		t.Errorf("FormatDollars(1234567) = %q", got)
	}
}
