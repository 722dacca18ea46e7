package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestEstimateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"estimate",
		"--capacity", "10", "--soc", "50", "--reserve", "20", "--max", "90",
		"--charge", "2", "--load", "0",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Status:       Charging",
		"Net power:    2.00 kW",
		"Remaining:    3.00 kWh",
		"Headroom:     4.00 kWh",
		"Time to full: 2 h",
		"Time to empty: -",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestEstimateCommandGarbageInput(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"estimate", "--capacity", "junk", "--soc", "50"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Remaining:    0.00 kWh") {
		t.Errorf("invalid capacity should zero energies:\n%s", got)
	}
}
