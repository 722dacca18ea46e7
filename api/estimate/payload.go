package estimate

import (
	"time"

	"github.com/lbarthe/socwatch/core/format"
	"github.com/lbarthe/socwatch/core/model"
)

// Payload is the API view of an evaluation: raw numbers for clients that
// compute, formatted strings for clients that only display.
type Payload struct {
	Status       model.Status   `json:"status"`
	GaugePercent float64        `json:"gauge_percent"`
	Snapshot     model.Snapshot `json:"snapshot"`

	NetPowerKW   float64 `json:"net_power_kw"`
	NetPower     string  `json:"net_power"`
	RemainingKWh float64 `json:"remaining_kwh"`
	Remaining    string  `json:"remaining"`
	HeadroomKWh  float64 `json:"headroom_kwh"`
	Headroom     string  `json:"headroom"`

	// TimeToFull and TimeToEmpty follow the display rule: "-" when not
	// computable, "> 999 h" beyond the cap, otherwise "H h M min".
	TimeToFull  string `json:"time_to_full"`
	TimeToEmpty string `json:"time_to_empty"`
	// FullAt and EmptyAt are projected wall-clock completion times, absent
	// when the corresponding estimate is not computable.
	FullAt  string `json:"full_at,omitempty"`
	EmptyAt string `json:"empty_at,omitempty"`
}

func buildPayload(now time.Time, snap model.Snapshot, est model.Estimate) Payload {
	return Payload{
		Status:       est.Status,
		GaugePercent: est.GaugePercent,
		Snapshot:     snap,
		NetPowerKW:   est.NetPowerKW,
		NetPower:     format.Power(est.NetPowerKW),
		RemainingKWh: est.RemainingKWh,
		Remaining:    format.Energy(est.RemainingKWh),
		HeadroomKWh:  est.HeadroomKWh,
		Headroom:     format.Energy(est.HeadroomKWh),
		TimeToFull:   format.Duration(est.TimeToFullHours),
		TimeToEmpty:  format.Duration(est.TimeToEmptyHours),
		FullAt:       format.Clock(now, est.TimeToFullHours),
		EmptyAt:      format.Clock(now, est.TimeToEmptyHours),
	}
}
