package engine

import (
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// KPISnapshot is one property's aggregate position as of an instant. All
// money figures are absolute; OwnershipPct is carried for callers that want
// "my share" scaling.
type KPISnapshot struct {
	AsOf time.Time

	// Acquisition
	PurchasePrice        float64
	AcquisitionCosts     float64
	TotalAcquisitionCost float64

	// Income accrued since settlement
	GrossRent   float64
	VacancyDays int
	VacancyLoss float64

	// Recurring costs accrued since settlement
	RecurringCostsByCategory map[string]float64
	TotalRecurringCosts      float64

	// One-off events summed to asOf; expenses are negative
	OneOffIncome   float64
	OneOffExpenses float64

	// Loan
	LoanBalance       float64
	LoanBalanceSource BalanceSource
	InterestPaid      float64
	CurrentRate       *float64
	CurrentLoanType   *domain.LoanType
	FixedExpiry       *time.Time

	// Cashflow
	NOI         float64
	NetCashflow float64

	// Equity and value; nil when no valuation exists
	LatestValuation     *float64
	LatestValuationDate *time.Time
	Equity              *float64
	LVR                 *float64

	OwnershipPct float64
}

// latestValuationAt returns the most recent valuation at or before asOf,
// or nil when none exists.
func latestValuationAt(valuations []domain.ValuationEvent, asOf time.Time) *domain.ValuationEvent {
	var latest *domain.ValuationEvent
	for i := range valuations {
		v := &valuations[i]
		if v.Date.After(asOf) {
			continue
		}
		if latest == nil || v.Date.After(latest.Date) {
			latest = v
		}
	}
	if latest == nil {
		return nil
	}
	found := *latest
	return &found
}

// ComputeKPIs composes the calculators into one snapshot as of asOf,
// accruing from the purchase settlement date (or asOf itself when no
// purchase event exists, yielding an empty accrual window).
func ComputeKPIs(events domain.EventSet, ownershipPct float64, asOf time.Time) KPISnapshot {
	startDate := asOf
	if events.Purchase != nil {
		startDate = events.Purchase.SettlementDate
	}

	rent := AccrueRent(events.Tenancies, startDate, asOf)

	byCategory := AccrueRecurringCosts(events.RecurringCosts, events.Tenancies, startDate, asOf)
	totalRecurring := SumCosts(byCategory)

	var oneOffIncome, oneOffExpenses float64
	for _, ev := range events.OneOffs {
		if ev.Date.After(asOf) {
			continue
		}
		if ev.Amount > 0 {
			oneOffIncome += ev.Amount
		} else {
			oneOffExpenses += ev.Amount
		}
	}

	loan := LoanBalanceAt(events.Purchase, events.Loans, asOf)
	interestPaid := InterestPaid(events.Purchase, events.Loans, asOf)

	noi := rent.GrossRent - totalRecurring
	netCashflow := noi - interestPaid + oneOffIncome + oneOffExpenses

	snapshot := KPISnapshot{
		AsOf:                     asOf,
		GrossRent:                rent.GrossRent,
		VacancyDays:              rent.VacancyDays,
		VacancyLoss:              rent.VacancyLoss,
		RecurringCostsByCategory: byCategory,
		TotalRecurringCosts:      totalRecurring,
		OneOffIncome:             oneOffIncome,
		OneOffExpenses:           oneOffExpenses,
		LoanBalance:              loan.Balance,
		LoanBalanceSource:        loan.Source,
		InterestPaid:             interestPaid,
		CurrentRate:              loan.AnnualRate,
		CurrentLoanType:          loan.LoanType,
		FixedExpiry:              loan.FixedExpiry,
		NOI:                      noi,
		NetCashflow:              netCashflow,
		OwnershipPct:             ownershipPct,
	}

	if events.Purchase != nil {
		snapshot.PurchasePrice = events.Purchase.PurchasePrice
		snapshot.AcquisitionCosts = events.Purchase.AcquisitionCosts()
		snapshot.TotalAcquisitionCost = events.Purchase.TotalAcquisitionCost()
	}

	if latest := latestValuationAt(events.Valuations, asOf); latest != nil {
		value := latest.Value
		date := latest.Date
		equity := value - loan.Balance
		snapshot.LatestValuation = &value
		snapshot.LatestValuationDate = &date
		snapshot.Equity = &equity
		if value > 0 {
			lvr := loan.Balance / value
			snapshot.LVR = &lvr
		}
	}

	return snapshot
}
