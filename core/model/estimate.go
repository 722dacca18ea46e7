package model

import "math"

// Status classifies the sign of the net power flow. Any nonzero value flips
// the state immediately, there is no deadband.
type Status int

const (
	StatusIdle Status = iota
	StatusCharging
	StatusDischarging
)

func (s Status) String() string {
	switch s {
	case StatusCharging:
		return "Charging"
	case StatusDischarging:
		return "Discharging"
	default:
		return "Idle"
	}
}

// MarshalJSON encodes the status as its display string.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Estimate holds every quantity derived from a snapshot. Time estimates that
// are not computable are +Inf, never NaN.
type Estimate struct {
	NetPowerKW       float64
	RemainingKWh     float64
	HeadroomKWh      float64
	Status           Status
	TimeToFullHours  float64
	TimeToEmptyHours float64
	GaugePercent     float64
}

// CanComputeFull reports whether TimeToFullHours is a finite, non-negative
// duration.
func (e Estimate) CanComputeFull() bool {
	return !math.IsInf(e.TimeToFullHours, 0) && e.TimeToFullHours >= 0
}

// CanComputeEmpty reports whether TimeToEmptyHours is a finite, non-negative
// duration.
func (e Estimate) CanComputeEmpty() bool {
	return !math.IsInf(e.TimeToEmptyHours, 0) && e.TimeToEmptyHours >= 0
}

// Evaluate derives the full estimate from a snapshot. It is a total function:
// degenerate inputs (zero capacity, zero net power, SoC past its bounds)
// resolve to zero or infinite values, never to NaN or a division by zero.
func Evaluate(s Snapshot) Estimate {
	net := s.ChargePowerKW - s.LoadPowerKW

	status := StatusIdle
	switch {
	case net > 0:
		status = StatusCharging
	case net < 0:
		status = StatusDischarging
	}

	remaining := s.CapacityKWh*s.SoC/100 - s.CapacityKWh*s.ReserveSoC/100
	if remaining < 0 {
		remaining = 0
	}
	headroom := s.CapacityKWh*s.MaxSoC/100 - s.CapacityKWh*s.SoC/100
	if headroom < 0 {
		headroom = 0
	}

	full := math.Inf(1)
	if net > 0 {
		if headroom <= 0 {
			full = 0
		} else {
			full = headroom / net
			if full < 0 {
				full = math.Inf(1)
			}
		}
	}

	empty := math.Inf(1)
	if net < 0 {
		if remaining <= 0 {
			empty = 0
		} else {
			empty = remaining / math.Abs(net)
			if empty < 0 {
				empty = math.Inf(1)
			}
		}
	}

	return Estimate{
		NetPowerKW:       net,
		RemainingKWh:     remaining,
		HeadroomKWh:      headroom,
		Status:           status,
		TimeToFullHours:  full,
		TimeToEmptyHours: empty,
		GaugePercent:     s.SoC,
	}
}
