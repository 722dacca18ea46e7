package model

import "math"

// Default values for a fresh session. Capacity, reserve and max are also the
// fallbacks when the settings store has no persisted value.
const (
	DefaultCapacityKWh = 15.33
	DefaultSoC         = 100.0
	DefaultChargeKW    = 0.0
	DefaultLoadKW      = 0.0
	DefaultReserveSoC  = 20.0
	DefaultMaxSoC      = 90.0
)

// Snapshot is a point-in-time view of the battery pack built from sanitized
// user input. It is a plain value: evaluation never mutates it and a new one
// is built on every field edit.
type Snapshot struct {
	CapacityKWh   float64 `json:"capacity_kwh"`    // total pack capacity, >= 0
	SoC           float64 `json:"soc"`             // state of charge percent [0,100]
	ChargePowerKW float64 `json:"charge_power_kw"` // incoming power [0,10]
	LoadPowerKW   float64 `json:"load_power_kw"`   // outgoing power [0,10]
	ReserveSoC    float64 `json:"reserve_soc"`     // floor percent treated as unusable [0,100]
	MaxSoC        float64 `json:"max_soc"`         // ceiling percent treated as full [0,100]
}

// DefaultSnapshot returns the session defaults: a full pack, no power flow,
// 20% reserve and a 90% charge ceiling.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		CapacityKWh:   DefaultCapacityKWh,
		SoC:           DefaultSoC,
		ChargePowerKW: DefaultChargeKW,
		LoadPowerKW:   DefaultLoadKW,
		ReserveSoC:    DefaultReserveSoC,
		MaxSoC:        DefaultMaxSoC,
	}
}

// StepSoC bumps the SoC by delta percentage points, clamps the result into
// [0,100] and rounds it to the nearest whole percent.
func StepSoC(current, delta float64) float64 {
	soc := current + delta
	if soc < 0 {
		soc = 0
	}
	if soc > 100 {
		soc = 100
	}
	return math.Round(soc)
}
