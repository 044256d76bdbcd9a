package snapshot

import (
	"math"
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// PropertyKPIs is the flat per-year KPI set derived from one YearlySnapshot.
// Ratio fields are nil when the inputs to derive them are missing.
type PropertyKPIs struct {
	GrossIncome float64
	RentIncome  float64
	OtherIncome float64

	TotalOpex                  float64
	TotalExpenses              float64
	TotalExpensesWithPrincipal float64

	NOI                   float64
	CashflowPrePrincipal  float64
	CashflowPostPrincipal float64

	GrossYield     *float64
	NetYield       *float64
	ReferenceValue *float64

	LoanBalance *float64
	Equity      *float64
	LVR         *float64

	Capex float64

	MyShareGrossIncome           float64
	MyShareNOI                   float64
	MyShareCashflowPrePrincipal  float64
	MyShareCashflowPostPrincipal float64
}

func grossIncome(snap *domain.YearlySnapshot) float64 {
	return domain.Amount(snap.RentIncome) + domain.Amount(snap.OtherIncome)
}

// totalOpex sums every operating expense, excluding interest, principal and
// capex.
func totalOpex(snap *domain.YearlySnapshot) float64 {
	return domain.Amount(snap.Maintenance) +
		domain.Amount(snap.Insurance) +
		domain.Amount(snap.CouncilRates) +
		domain.Amount(snap.StrataFees) +
		domain.Amount(snap.PropertyMgmtFees) +
		domain.Amount(snap.Utilities) +
		domain.Amount(snap.OtherExpenses)
}

// ComputeKPIs derives the full KPI set for one snapshot. referenceValue is
// the property's value for the year (latest valuation, else purchase price)
// and may be nil, which nulls the yields, equity and LVR.
func ComputeKPIs(snap *domain.YearlySnapshot, referenceValue *float64, ownershipPct float64) PropertyKPIs {
	income := grossIncome(snap)
	opex := totalOpex(snap)
	expenses := opex + domain.Amount(snap.InterestPaid)
	noi := income - opex
	cashflowPre := income - opex - domain.Amount(snap.InterestPaid)
	cashflowPost := cashflowPre - domain.Amount(snap.PrincipalPaid)

	ratio := math.Min(math.Max(ownershipPct, 0), 100) / 100

	kpis := PropertyKPIs{
		GrossIncome:                  income,
		RentIncome:                   domain.Amount(snap.RentIncome),
		OtherIncome:                  domain.Amount(snap.OtherIncome),
		TotalOpex:                    opex,
		TotalExpenses:                expenses,
		TotalExpensesWithPrincipal:   expenses + domain.Amount(snap.PrincipalPaid),
		NOI:                          noi,
		CashflowPrePrincipal:         cashflowPre,
		CashflowPostPrincipal:        cashflowPost,
		ReferenceValue:               referenceValue,
		LoanBalance:                  snap.LoanBalance,
		Capex:                        domain.Amount(snap.Capex),
		MyShareGrossIncome:           income * ratio,
		MyShareNOI:                   noi * ratio,
		MyShareCashflowPrePrincipal:  cashflowPre * ratio,
		MyShareCashflowPostPrincipal: cashflowPost * ratio,
	}

	if referenceValue != nil && *referenceValue != 0 {
		gy := domain.Amount(snap.RentIncome) / *referenceValue
		ny := noi / *referenceValue
		kpis.GrossYield = &gy
		kpis.NetYield = &ny
	}
	if referenceValue != nil && snap.LoanBalance != nil {
		equity := *referenceValue - *snap.LoanBalance
		kpis.Equity = &equity
		if *referenceValue != 0 {
			lvr := *snap.LoanBalance / *referenceValue
			kpis.LVR = &lvr
		}
	}

	return kpis
}

// ResolveReferenceValue returns the most recent valuation dated on or before
// Dec 31 of the year, falling back to the purchase price.
func ResolveReferenceValue(year int, valuations []domain.ValuationEvent, purchasePrice *float64) *float64 {
	cutoff := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	var latest *domain.ValuationEvent
	for i := range valuations {
		v := &valuations[i]
		if v.Date.After(cutoff) {
			continue
		}
		if latest == nil || v.Date.After(latest.Date) {
			latest = v
		}
	}
	if latest != nil {
		value := latest.Value
		return &value
	}
	return purchasePrice
}

// yoyLargeChangeThreshold flags year-over-year swings above 20%.
const yoyLargeChangeThreshold = 0.2

// YoYDelta is one metric's movement between consecutive years.
type YoYDelta struct {
	Metric   string
	Current  *float64
	Previous *float64
	Delta    *float64
	DeltaPct *float64
	IsLarge  bool
}

// NewYoYDelta compares one metric across two years. Delta and DeltaPct stay
// nil when either side is missing; DeltaPct also stays nil for a zero base.
func NewYoYDelta(metric string, current, previous *float64) YoYDelta {
	d := YoYDelta{Metric: metric, Current: current, Previous: previous}
	if current == nil || previous == nil {
		return d
	}

	delta := *current - *previous
	d.Delta = &delta
	if *previous != 0 {
		pct := delta / math.Abs(*previous)
		d.DeltaPct = &pct
		d.IsLarge = math.Abs(pct) > yoyLargeChangeThreshold
	}
	return d
}

// ComputeYoYDeltas compares the headline metrics of two consecutive years.
// A nil previous year yields an empty list.
func ComputeYoYDeltas(current PropertyKPIs, previous *PropertyKPIs) []YoYDelta {
	if previous == nil {
		return nil
	}

	f := func(v float64) *float64 { return &v }
	return []YoYDelta{
		NewYoYDelta("Gross Income", f(current.GrossIncome), f(previous.GrossIncome)),
		NewYoYDelta("NOI", f(current.NOI), f(previous.NOI)),
		NewYoYDelta("Cashflow (pre-principal)", f(current.CashflowPrePrincipal), f(previous.CashflowPrePrincipal)),
		NewYoYDelta("Cashflow (post-principal)", f(current.CashflowPostPrincipal), f(previous.CashflowPostPrincipal)),
		NewYoYDelta("Total Opex", f(current.TotalOpex), f(previous.TotalOpex)),
		NewYoYDelta("Total Expenses", f(current.TotalExpenses), f(previous.TotalExpenses)),
	}
}
