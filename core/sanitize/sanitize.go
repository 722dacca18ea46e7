// Package sanitize converts free-form text entry into numeric values within a
// declared domain. Every function is total: malformed input degrades silently
// to zero and is then clamped, nothing ever returns an error or NaN.
package sanitize

import (
	"math"
	"strconv"
	"strings"
)

// Field domains. Percent covers soc, reserve and max; power covers the charge
// and load inputs.
const (
	PercentMin = 0.0
	PercentMax = 100.0
	PowerMin   = 0.0
	PowerMax   = 10.0
)

// Value parses text as a float and clamps it into [min, max]. Unparsable or
// non-finite input is treated as 0 before clamping.
func Value(text string, min, max float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}

// Percent sanitizes a percentage field into [0,100].
func Percent(text string) float64 {
	return Value(text, PercentMin, PercentMax)
}

// Power sanitizes a power field into [0,10] kW.
func Power(text string) float64 {
	return Value(text, PowerMin, PowerMax)
}

// Capacity sanitizes the capacity field. It has no upper bound: the value is
// parse-only with a floor of zero, so an invalid entry zeroes every derived
// energy quantity downstream.
func Capacity(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// AtMax reports whether a sanitized value sits exactly at its upper bound.
// The presentation layer uses this to highlight "at max" entries.
func AtMax(v, max float64) bool {
	return v == max
}
