package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// AppreciationSegment is one leg of a multi-segment appreciation schedule:
// grow at Rate for Years years, compounding.
type AppreciationSegment struct {
	Years float64
	Rate  float64
}

// ForecastPoint is the projected position at one future year-offset.
type ForecastPoint struct {
	Year         int // calendar year
	YearsFromNow int

	ProjectedValue float64
	LoanBalance    float64
	Equity         float64
	LVR            *float64

	// Held at the trailing-12-month run rate; the forecast does not model
	// rent growth or cost inflation.
	AnnualGrossRent      float64
	AnnualRecurringCosts float64
	AnnualInterest       float64
	AnnualNetCashflow    float64

	CumulativeCashflow float64
	// Measured against current equity net of acquisition costs, so year 0
	// already reports the stamp duty, legal and agent fees as gain.
	CumulativeEquityGain float64

	// ROI keeps growing with the horizon; AnnualisedROI is the CAGR of
	// total return and stays comparable across horizons.
	ROI           float64
	AnnualisedROI float64
	ValueCAGR     float64
}

// validateSchedule rejects appreciation segments the projection cannot
// reason about. Anything else degrades numerically instead of failing.
func validateSchedule(schedule []AppreciationSegment) error {
	for i, seg := range schedule {
		if seg.Years <= 0 {
			return fmt.Errorf("appreciation segment %d: years must be positive, got %v", i, seg.Years)
		}
	}
	return nil
}

// projectValue applies the appreciation schedule to anchorValue for the
// given (possibly fractional) number of years. Segments compound in order;
// a horizon beyond the schedule keeps growing at the last segment's rate.
// With no schedule, fallbackRate applies flat.
func projectValue(anchorValue float64, schedule []AppreciationSegment, fallbackRate, years float64) float64 {
	if len(schedule) == 0 {
		return anchorValue * math.Pow(1+fallbackRate, years)
	}

	value := anchorValue
	remaining := years
	for _, seg := range schedule {
		if remaining <= 0 {
			break
		}
		segYears := math.Min(remaining, seg.Years)
		value *= math.Pow(1+seg.Rate, segYears)
		remaining -= segYears
	}
	if remaining > 0 {
		value *= math.Pow(1+schedule[len(schedule)-1].Rate, remaining)
	}
	return value
}

// ComputeForecast projects one property forward and returns a point per
// requested year-offset, sorted ascending.
//
// The projection anchors on the most recent valuation at or before asOf
// (purchase price when none exists) so it reflects known current value, and
// the appreciation schedule runs from the anchor date. Rent and recurring
// costs are annualized from the trailing 365 days, clipped to the
// settlement date for young properties, then held flat. The loan balance is
// stepped forward with the same estimator used for point-in-time KPIs.
// fallbackRate is the flat appreciation rate used when schedule is empty,
// and the value CAGR reported at year offset 0.
func ComputeForecast(
	events domain.EventSet,
	ownershipPct float64,
	fallbackRate float64,
	asOf time.Time,
	years []int,
	schedule []AppreciationSegment,
) ([]ForecastPoint, error) {
	if err := validateSchedule(schedule); err != nil {
		return nil, err
	}

	purchase := events.Purchase

	// Anchor value and date
	anchorValue := 0.0
	anchorDate := asOf
	if purchase != nil {
		anchorValue = purchase.PurchasePrice
		anchorDate = purchase.SettlementDate
	}
	if latest := latestValuationAt(events.Valuations, asOf); latest != nil {
		anchorValue = latest.Value
		anchorDate = latest.Date
	}

	// Trailing-12-month run rate, clipped to settlement
	runRateStart := asOf.AddDate(-1, 0, 0)
	effectiveStart := runRateStart
	if purchase != nil && purchase.SettlementDate.After(runRateStart) {
		effectiveStart = purchase.SettlementDate
	}
	runRateDays := daysBetween(effectiveStart, asOf)
	annualisationFactor := 1.0
	if runRateDays > 0 {
		annualisationFactor = daysPerYear / float64(runRateDays)
	}

	rent := AccrueRent(events.Tenancies, effectiveStart, asOf)
	costs := AccrueRecurringCosts(events.RecurringCosts, events.Tenancies, effectiveStart, asOf)

	annualGrossRent := rent.GrossRent * annualisationFactor
	annualRecurringCosts := SumCosts(costs) * annualisationFactor

	currentEquity := anchorValue - LoanBalanceAt(purchase, events.Loans, asOf).Balance

	acquisitionCosts := purchase.AcquisitionCosts()
	totalAcquisitionCost := math.Max(1, purchase.TotalAcquisitionCost())

	// Gains are measured from current equity less acquisition costs, which
	// credits the sunk fees back as gain from year 0 onwards.
	equityGainBasis := currentEquity - acquisitionCosts

	sortedYears := make([]int, len(years))
	copy(sortedYears, years)
	sort.Ints(sortedYears)

	var cumulativeCashflow float64
	results := make([]ForecastPoint, 0, len(sortedYears))

	for _, y := range sortedYears {
		yearsFromAnchor := (float64(y)*daysPerYear + float64(daysBetween(anchorDate, asOf))) / daysPerYear
		projected := projectValue(anchorValue, schedule, fallbackRate, yearsFromAnchor)

		futureDate := asOf.AddDate(y, 0, 0)
		futureLoan := LoanBalanceAt(purchase, events.Loans, futureDate)

		equity := projected - futureLoan.Balance
		var lvr *float64
		if projected > 0 {
			v := futureLoan.Balance / projected
			lvr = &v
		}

		var annualInterest float64
		if futureLoan.AnnualRate != nil {
			annualInterest = futureLoan.Balance * *futureLoan.AnnualRate
		}

		annualNetCashflow := annualGrossRent - annualRecurringCosts - annualInterest

		// Accrue cashflow from the previous checkpoint, not from zero
		prevY := 0
		if len(results) > 0 {
			prevY = results[len(results)-1].YearsFromNow
		}
		cumulativeCashflow += annualNetCashflow * float64(y-prevY)

		cumulativeEquityGain := equity - equityGainBasis
		roi := (cumulativeEquityGain + cumulativeCashflow) / totalAcquisitionCost

		annualisedROI := roi
		if y > 0 {
			// Clamp the base so a ROI below -100% cannot demand a complex root
			annualisedROI = math.Pow(math.Max(0, 1+roi), 1/float64(y)) - 1
		}

		valueCAGR := fallbackRate
		if y > 0 {
			valueCAGR = math.Pow(projected/math.Max(1, anchorValue), 1/float64(y)) - 1
		}

		results = append(results, ForecastPoint{
			Year:                 asOf.Year() + y,
			YearsFromNow:         y,
			ProjectedValue:       projected,
			LoanBalance:          futureLoan.Balance,
			Equity:               equity,
			LVR:                  lvr,
			AnnualGrossRent:      annualGrossRent,
			AnnualRecurringCosts: annualRecurringCosts,
			AnnualInterest:       annualInterest,
			AnnualNetCashflow:    annualNetCashflow,
			CumulativeCashflow:   cumulativeCashflow,
			CumulativeEquityGain: cumulativeEquityGain,
			ROI:                  roi,
			AnnualisedROI:        annualisedROI,
			ValueCAGR:            valueCAGR,
		})
	}

	return results, nil
}
