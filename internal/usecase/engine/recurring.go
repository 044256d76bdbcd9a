package engine

import (
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// AccrueRecurringCosts integrates every recurring cost whose active window
// intersects [from, to) and returns the accrued amount per category.
// Categories with nothing accrued in the window are absent from the map,
// not zero entries. Multiple costs sharing a category are summed.
//
// Fixed fees accrue at amount divided by the cadence's average day length.
// Percentage-of-rent fees accrue against rent computed over the
// intersection of the cost's active window with the query window, which is
// why the tenancy sequence is a parameter here.
func AccrueRecurringCosts(costs []domain.RecurringCostEvent, tenancies []domain.TenancyEvent, from, to time.Time) map[string]float64 {
	totals := make(map[string]float64)

	for _, cost := range costs {
		if cost.EffectiveDate.After(to) {
			continue
		}

		costStart := clampDate(cost.EffectiveDate, from, to)
		costEnd := to
		if cost.EndDate != nil {
			costEnd = clampDate(*cost.EndDate, from, to)
		}
		if !costStart.Before(costEnd) {
			continue
		}

		days := daysBetween(costStart, costEnd)
		var amount float64

		switch cost.FeeType {
		case domain.FeeTypeFixed:
			amount = cost.Amount / cadenceDays(cost.Cadence) * float64(days)
		case domain.FeeTypePercentOfRent:
			rent := AccrueRent(tenancies, costStart, costEnd)
			amount = rent.GrossRent * cost.Amount
		}

		totals[cost.Category] += amount
	}

	return totals
}

// SumCosts adds up a category-total map produced by AccrueRecurringCosts.
func SumCosts(byCategory map[string]float64) float64 {
	var total float64
	for _, v := range byCategory {
		total += v
	}
	return total
}
