package format

import (
	"math"
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{2, "2 h"},
		{1.6, "1 h 36 min"},
		{0, "0 min"},
		{0.5, "30 min"},
		{25.25, "25 h 15 min"},
		{999.0, "999 h"},
		{999.5, "> 999 h"},
		{1200, "> 999 h"},
		{-1, "-"},
		{math.Inf(1), "-"},
		{math.Inf(-1), "-"},
		{math.NaN(), "-"},
		// rounding to the nearest whole minute
		{0.0001, "0 min"},
		{1.9999, "2 h"},
	}
	for _, c := range cases {
		if got := Duration(c.hours); got != c.want {
			t.Errorf("Duration(%v) = %q, want %q", c.hours, got, c.want)
		}
	}
}

func TestPower(t *testing.T) {
	cases := []struct {
		kw   float64
		want string
	}{
		{2, "2.00 kW"},
		{-5, "-5.00 kW"},
		{1.357, "1.36 kW"},
		{0, "0.00 kW"},
		{1e-7, "0.00 kW"},
		{-1e-7, "0.00 kW"},
	}
	for _, c := range cases {
		if got := Power(c.kw); got != c.want {
			t.Errorf("Power(%v) = %q, want %q", c.kw, got, c.want)
		}
	}
}

func TestEnergy(t *testing.T) {
	if got := Energy(3); got != "3.00 kWh" {
		t.Errorf("Energy(3) = %q", got)
	}
	if got := Energy(12.266); got != "12.27 kWh" {
		t.Errorf("Energy(12.266) = %q", got)
	}
}

func TestClock(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	cases := []struct {
		hours float64
		want  string
	}{
		{2, "16:30"},
		{1.6, "16:06"},
		{0, "14:30"},
		{10, "00:30"}, // rolls past midnight
		{math.Inf(1), ""},
		{-1, ""},
		{math.NaN(), ""},
	}
	for _, c := range cases {
		if got := Clock(now, c.hours); got != c.want {
			t.Errorf("Clock(now, %v) = %q, want %q", c.hours, got, c.want)
		}
	}
}
