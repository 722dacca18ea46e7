// Package format renders estimate quantities as display strings.
package format

import (
	"fmt"
	"math"
	"time"
)

// powerEpsilon snaps residual floating point noise to a clean zero reading.
const powerEpsilon = 1e-6

// Power renders a power value as "<value> kW" with two decimals. Magnitudes
// below 1e-6 display as 0.00.
func Power(kw float64) string {
	if math.Abs(kw) < powerEpsilon {
		kw = 0
	}
	return fmt.Sprintf("%.2f kW", kw)
}

// Energy renders an energy value as "<value> kWh" with two decimals.
func Energy(kwh float64) string {
	return fmt.Sprintf("%.2f kWh", kwh)
}

// Duration renders an elapsed-hours value as "H h M min". Zero parts are
// omitted, a zero duration reads "0 min", anything over 999 hours reads
// "> 999 h" and non-finite or negative values read "-". Minutes are the
// total hours rounded to the nearest whole minute.
func Duration(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return "-"
	}
	if hours > 999 {
		return "> 999 h"
	}
	total := int(math.Round(hours * 60))
	h := total / 60
	m := total % 60
	switch {
	case h == 0 && m == 0:
		return "0 min"
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0:
		return fmt.Sprintf("%d h", h)
	default:
		return fmt.Sprintf("%d h %d min", h, m)
	}
}

// Clock projects a completion wall-clock time by adding the given hours
// (rounded to whole minutes) to now, rendered as hour:minute. It returns the
// empty string when the duration is not computable.
func Clock(now time.Time, hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return ""
	}
	minutes := time.Duration(math.Round(hours*60)) * time.Minute
	return now.Add(minutes).Format("15:04")
}
