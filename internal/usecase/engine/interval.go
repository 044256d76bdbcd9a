// Package engine derives investment KPIs and forecasts from raw property
// event streams.
//
// Every function is pure: no persistence, no clock reads, no mutation of
// caller-supplied slices. Callers load an EventSet through a repository and
// hand it over together with an explicit "as of" instant, so the same
// inputs always produce the same outputs. Computation for N properties is N
// independent invocations.
package engine

import (
	"math"
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// daysPerYear is the calendar-average year length used for all cadence
// arithmetic. An intentional simplification: cadences map to average day
// counts, not exact month lengths.
const daysPerYear = 365.25

// daysBetween returns the number of days from a to b, positive when b is
// after a.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// cadenceDays maps a repayment or fee cadence to its average length in days.
func cadenceDays(c domain.Cadence) float64 {
	switch c {
	case domain.CadenceWeekly:
		return 7
	case domain.CadenceFortnightly:
		return 14
	case domain.CadenceMonthly:
		return daysPerYear / 12
	case domain.CadenceQuarterly:
		return daysPerYear / 4
	case domain.CadenceAnnually:
		return daysPerYear
	default:
		return daysPerYear
	}
}

// clampDate limits d to the window [min, max].
func clampDate(d, min, max time.Time) time.Time {
	if d.Before(min) {
		return min
	}
	if d.After(max) {
		return max
	}
	return d
}
