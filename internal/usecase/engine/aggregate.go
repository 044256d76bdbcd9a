package engine

import "math"

// AggregateForecast sums per-property forecasts into portfolio-level points,
// one per requested year-offset. Year-offsets with no matching point in any
// property are skipped.
//
// Aggregate ROI is back-derived: each property's acquisition cost is
// recovered from (equityGain + cashflow) / roi, guarded with max(1, cost),
// and the summed gains are divided by the summed costs. Properties whose
// ROI is exactly zero contribute nothing to the denominator, which makes
// the aggregate an approximation in that edge case.
func AggregateForecast(perProperty [][]ForecastPoint, years []int) []ForecastPoint {
	aggregate := make([]ForecastPoint, 0, len(years))

	for _, y := range years {
		var pts []ForecastPoint
		for _, forecast := range perProperty {
			for _, pt := range forecast {
				if pt.YearsFromNow == y {
					pts = append(pts, pt)
					break
				}
			}
		}
		if len(pts) == 0 {
			continue
		}

		var totalValue, totalLoan, totalEquity float64
		var totalRent, totalCosts, totalInterest, totalNetCashflow float64
		var totalCumCashflow, totalCumEquityGain float64
		var totalAcquisitionCost, cagrSum float64

		for _, pt := range pts {
			totalValue += pt.ProjectedValue
			totalLoan += pt.LoanBalance
			totalEquity += pt.Equity
			totalRent += pt.AnnualGrossRent
			totalCosts += pt.AnnualRecurringCosts
			totalInterest += pt.AnnualInterest
			totalNetCashflow += pt.AnnualNetCashflow
			totalCumCashflow += pt.CumulativeCashflow
			totalCumEquityGain += pt.CumulativeEquityGain
			cagrSum += pt.ValueCAGR

			if pt.ROI != 0 {
				cost := (pt.CumulativeEquityGain + pt.CumulativeCashflow) / pt.ROI
				totalAcquisitionCost += math.Max(1, cost)
			}
		}

		var aggROI float64
		if totalAcquisitionCost > 0 {
			aggROI = (totalCumEquityGain + totalCumCashflow) / totalAcquisitionCost
		}

		aggAnnualisedROI := aggROI
		if y > 0 {
			aggAnnualisedROI = math.Pow(math.Max(0, 1+aggROI), 1/float64(y)) - 1
		}

		var lvr *float64
		if totalValue > 0 {
			v := totalLoan / totalValue
			lvr = &v
		}

		aggregate = append(aggregate, ForecastPoint{
			Year:                 pts[0].Year,
			YearsFromNow:         y,
			ProjectedValue:       totalValue,
			LoanBalance:          totalLoan,
			Equity:               totalEquity,
			LVR:                  lvr,
			AnnualGrossRent:      totalRent,
			AnnualRecurringCosts: totalCosts,
			AnnualInterest:       totalInterest,
			AnnualNetCashflow:    totalNetCashflow,
			CumulativeCashflow:   totalCumCashflow,
			CumulativeEquityGain: totalCumEquityGain,
			ROI:                  aggROI,
			AnnualisedROI:        aggAnnualisedROI,
			ValueCAGR:            cagrSum / float64(len(pts)),
		})
	}

	return aggregate
}
