package engine

import (
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// PeriodKPIs is the KPI composition restricted to a closed date interval,
// for fiscal-year-style reporting.
type PeriodKPIs struct {
	From time.Time
	To   time.Time

	GrossRent                float64
	RecurringCostsByCategory map[string]float64
	TotalRecurringCosts      float64
	OneOffIncome             float64
	OneOffExpenses           float64
	InterestPaid             float64
	NOI                      float64
	NetCashflow              float64

	OwnershipPct float64
}

// ComputeForPeriod composes KPIs over [from, to]. Rent and recurring costs
// are accrued directly over the window. Interest is the difference of two
// cumulative walks, InterestPaid(to) - InterestPaid(from); this is valid
// because the interest walk is monotonically non-decreasing in its query
// instant, an invariant any reimplementation of the estimator must keep.
func ComputeForPeriod(events domain.EventSet, ownershipPct float64, from, to time.Time) PeriodKPIs {
	rent := AccrueRent(events.Tenancies, from, to)

	byCategory := AccrueRecurringCosts(events.RecurringCosts, events.Tenancies, from, to)
	totalRecurring := SumCosts(byCategory)

	var oneOffIncome, oneOffExpenses float64
	for _, ev := range events.OneOffs {
		if ev.Date.Before(from) || ev.Date.After(to) {
			continue
		}
		if ev.Amount > 0 {
			oneOffIncome += ev.Amount
		} else {
			oneOffExpenses += ev.Amount
		}
	}

	interestPaid := InterestPaid(events.Purchase, events.Loans, to) -
		InterestPaid(events.Purchase, events.Loans, from)
	if interestPaid < 0 {
		interestPaid = 0
	}

	noi := rent.GrossRent - totalRecurring
	netCashflow := noi - interestPaid + oneOffIncome + oneOffExpenses

	return PeriodKPIs{
		From:                     from,
		To:                       to,
		GrossRent:                rent.GrossRent,
		RecurringCostsByCategory: byCategory,
		TotalRecurringCosts:      totalRecurring,
		OneOffIncome:             oneOffIncome,
		OneOffExpenses:           oneOffExpenses,
		InterestPaid:             interestPaid,
		NOI:                      noi,
		NetCashflow:              netCashflow,
		OwnershipPct:             ownershipPct,
	}
}
