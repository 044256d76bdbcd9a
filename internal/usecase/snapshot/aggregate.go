package snapshot

import (
	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// PropertyYearData is the per-property input to aggregation: the property,
// whatever is needed to resolve its reference value, and the snapshot for
// the year under aggregation (nil when the year was never recorded).
type PropertyYearData struct {
	Property      *domain.Property
	Valuations    []domain.ValuationEvent
	PurchasePrice *float64
	Snapshot      *domain.YearlySnapshot
}

// PropertyBreakdown is one property's contribution to an aggregate.
type PropertyBreakdown struct {
	PropertyID   uuid.UUID
	PropertyName string
	KPIs         PropertyKPIs
	HasSnapshot  bool
}

// AggregatedKPIs is the portfolio-level rollup for one year. Totals over
// nullable per-property figures are nil when no property contributed one.
type AggregatedKPIs struct {
	PropertyCount int
	Year          int

	GrossIncome           float64
	TotalOpex             float64
	TotalExpenses         float64
	NOI                   float64
	CashflowPrePrincipal  float64
	CashflowPostPrincipal float64
	Capex                 float64

	TotalReferenceValue *float64
	TotalLoanBalance    *float64
	TotalEquity         *float64
	AvgLVR              *float64
	GrossYield          *float64
	NetYield            *float64

	PropertyBreakdown []PropertyBreakdown
	MissingSnapshots  []uuid.UUID
}

// Aggregate sums KPIs across properties for one year. Properties without a
// snapshot are reported in MissingSnapshots and contribute zeros.
func Aggregate(properties []PropertyYearData, year int) AggregatedKPIs {
	agg := AggregatedKPIs{
		PropertyCount: len(properties),
		Year:          year,
	}

	var totalRefValue, totalLoanBalance float64
	var refValueCount, loanBalanceCount int

	for _, pd := range properties {
		if pd.Snapshot == nil {
			agg.MissingSnapshots = append(agg.MissingSnapshots, pd.Property.ID)
			agg.PropertyBreakdown = append(agg.PropertyBreakdown, PropertyBreakdown{
				PropertyID:   pd.Property.ID,
				PropertyName: pd.Property.Name,
			})
			continue
		}

		refValue := ResolveReferenceValue(year, pd.Valuations, pd.PurchasePrice)
		kpis := ComputeKPIs(pd.Snapshot, refValue, pd.Property.OwnershipPct)

		agg.GrossIncome += kpis.GrossIncome
		agg.TotalOpex += kpis.TotalOpex
		agg.TotalExpenses += kpis.TotalExpenses
		agg.NOI += kpis.NOI
		agg.CashflowPrePrincipal += kpis.CashflowPrePrincipal
		agg.CashflowPostPrincipal += kpis.CashflowPostPrincipal
		agg.Capex += kpis.Capex

		if refValue != nil {
			totalRefValue += *refValue
			refValueCount++
		}
		if pd.Snapshot.LoanBalance != nil {
			totalLoanBalance += *pd.Snapshot.LoanBalance
			loanBalanceCount++
		}

		agg.PropertyBreakdown = append(agg.PropertyBreakdown, PropertyBreakdown{
			PropertyID:   pd.Property.ID,
			PropertyName: pd.Property.Name,
			KPIs:         kpis,
			HasSnapshot:  true,
		})
	}

	if refValueCount > 0 {
		agg.TotalReferenceValue = &totalRefValue
	}
	if loanBalanceCount > 0 {
		agg.TotalLoanBalance = &totalLoanBalance
	}
	if agg.TotalReferenceValue != nil && agg.TotalLoanBalance != nil {
		equity := totalRefValue - totalLoanBalance
		agg.TotalEquity = &equity
		if totalRefValue > 0 {
			lvr := totalLoanBalance / totalRefValue
			agg.AvgLVR = &lvr
		}
	}
	if agg.TotalReferenceValue != nil && totalRefValue > 0 {
		gy := agg.GrossIncome / totalRefValue
		ny := agg.NOI / totalRefValue
		agg.GrossYield = &gy
		agg.NetYield = &ny
	}

	return agg
}

// TrendPoint is one year of the portfolio trend series.
type TrendPoint struct {
	Year                 int
	GrossIncome          float64
	TotalOpex            float64
	NOI                  float64
	CashflowPrePrincipal float64
}

// YearlyTrend aggregates multiple years for charting. snapshotsByYear maps
// year to the per-property snapshots of that year, keyed by property ID.
func YearlyTrend(
	properties []PropertyYearData,
	snapshotsByYear map[int]map[uuid.UUID]*domain.YearlySnapshot,
	years []int,
) []TrendPoint {
	trend := make([]TrendPoint, 0, len(years))
	for _, year := range years {
		yearData := make([]PropertyYearData, len(properties))
		copy(yearData, properties)
		for i := range yearData {
			yearData[i].Snapshot = snapshotsByYear[year][yearData[i].Property.ID]
		}

		agg := Aggregate(yearData, year)
		trend = append(trend, TrendPoint{
			Year:                 year,
			GrossIncome:          agg.GrossIncome,
			TotalOpex:            agg.TotalOpex,
			NOI:                  agg.NOI,
			CashflowPrePrincipal: agg.CashflowPrePrincipal,
		})
	}
	return trend
}
