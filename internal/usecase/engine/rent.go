package engine

import (
	"sort"
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// RentAccrual is the result of integrating a tenancy timeline over a window.
// VacancyDays and the occupied days always partition the window length.
type RentAccrual struct {
	GrossRent   float64
	VacancyDays int
	VacancyLoss float64
}

// AccrueRent integrates the tenancy event sequence over [from, to) and
// returns accrued gross rent, vacancy days and estimated vacancy loss.
//
// The sequence is treated as a step function of weekly rent. Events outside
// the window contribute no days (their dates are clamped into the window
// before differencing) but still determine the rent carried into a window
// that starts mid-tenancy. Vacancy loss is priced at the last weekly rent
// in force before the vacancy began, zero if no rent was ever known.
func AccrueRent(tenancies []domain.TenancyEvent, from, to time.Time) RentAccrual {
	if len(tenancies) == 0 {
		return RentAccrual{}
	}

	events := make([]domain.TenancyEvent, 0, len(tenancies))
	for _, ev := range tenancies {
		if !ev.EffectiveDate.After(to) {
			events = append(events, ev)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EffectiveDate.Before(events[j].EffectiveDate)
	})

	var grossRent float64
	vacancyDays := 0
	var currentWeeklyRent *float64
	periodStart := from

	for _, ev := range events {
		periodEnd := clampDate(ev.EffectiveDate, from, to)
		days := daysBetween(periodStart, periodEnd)
		if days < 0 {
			days = 0
		}

		if currentWeeklyRent != nil {
			grossRent += *currentWeeklyRent * float64(days) / 7
		} else {
			vacancyDays += days
		}

		periodStart = periodEnd

		if ev.Type == domain.TenancyEnd {
			currentWeeklyRent = nil
		} else if ev.WeeklyRent != nil {
			// START or RENT_CHANGE; a missing rent keeps the previous one
			currentWeeklyRent = ev.WeeklyRent
		}
	}

	// Final segment from the last event to the window end
	remaining := daysBetween(periodStart, to)
	if remaining < 0 {
		remaining = 0
	}
	if currentWeeklyRent != nil {
		grossRent += *currentWeeklyRent * float64(remaining) / 7
	} else {
		vacancyDays += remaining
	}

	var lastKnownRent float64
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type != domain.TenancyEnd && events[i].WeeklyRent != nil {
			lastKnownRent = *events[i].WeeklyRent
			break
		}
	}

	return RentAccrual{
		GrossRent:   grossRent,
		VacancyDays: vacancyDays,
		VacancyLoss: lastKnownRent * float64(vacancyDays) / 7,
	}
}
