package engine

import (
	"sort"
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// BalanceSource says where a loan balance figure came from.
type BalanceSource string

const (
	// BalanceSourceManual means the latest loan event carried a manual
	// balance, which is ground truth for its period
	BalanceSourceManual BalanceSource = "manual"
	// BalanceSourceComputed means the balance was estimated by walking the
	// loan periods forward from the purchase loan amount
	BalanceSourceComputed BalanceSource = "computed"
	// BalanceSourceNone means no loan event existed at the query instant;
	// the purchase loan amount (or zero) was used as-is
	BalanceSourceNone BalanceSource = "none"
)

// LoanPosition describes the estimated state of the loan at an instant.
type LoanPosition struct {
	Balance     float64
	Source      BalanceSource
	AnnualRate  *float64
	LoanType    *domain.LoanType
	FixedExpiry *time.Time
}

// activeLoanEvents returns the loan events effective at or before asOf,
// sorted chronologically. Always a fresh slice.
func activeLoanEvents(loans []domain.LoanEvent, asOf time.Time) []domain.LoanEvent {
	active := make([]domain.LoanEvent, 0, len(loans))
	for _, ev := range loans {
		if !ev.EffectiveDate.After(asOf) {
			active = append(active, ev)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].EffectiveDate.Before(active[j].EffectiveDate)
	})
	return active
}

// LoanBalanceAt estimates the outstanding loan balance at asOf.
//
// Priority order: with no loan events at or before asOf the purchase loan
// amount stands (source "none"); a manual balance on the chronologically
// latest event wins verbatim over any computation (source "manual");
// otherwise the balance is walked forward period by period from the
// purchase loan amount (source "computed"). Interest-only periods leave the
// balance unchanged; amortizing periods reduce it by the estimated
// principal component of each repayment, never below zero.
func LoanBalanceAt(purchase *domain.PurchaseEvent, loans []domain.LoanEvent, asOf time.Time) LoanPosition {
	active := activeLoanEvents(loans, asOf)

	if len(active) == 0 {
		var balance float64
		if purchase != nil {
			balance = domain.Amount(purchase.LoanAmount)
		}
		return LoanPosition{Balance: balance, Source: BalanceSourceNone}
	}

	latest := active[len(active)-1]

	if latest.ManualLoanBalance != nil {
		rate := latest.AnnualRate
		loanType := latest.LoanType
		return LoanPosition{
			Balance:     *latest.ManualLoanBalance,
			Source:      BalanceSourceManual,
			AnnualRate:  &rate,
			LoanType:    &loanType,
			FixedExpiry: latest.FixedExpiry,
		}
	}

	var balance float64
	if purchase != nil {
		balance = domain.Amount(purchase.LoanAmount)
	}

	for i, loan := range active {
		periodStart := loan.EffectiveDate
		periodEnd := asOf
		if i+1 < len(active) {
			periodEnd = active[i+1].EffectiveDate
		}
		if !periodEnd.After(periodStart) {
			continue
		}

		if loan.LoanType == domain.LoanTypeInterestOnly {
			continue
		}

		days := daysBetween(periodStart, clampDate(periodEnd, periodStart, asOf))
		perPeriod := cadenceDays(loan.RepaymentCadence)
		periodsElapsed := float64(days) / perPeriod

		// Simple-interest-per-period estimate, not a true amortization
		// schedule; diverges from lender statements over long horizons.
		ratePerPeriod := loan.AnnualRate / (daysPerYear / perPeriod)
		interestPerPeriod := balance * ratePerPeriod
		principalPerPeriod := loan.RepaymentAmount - interestPerPeriod
		if principalPerPeriod < 0 {
			principalPerPeriod = 0
		}
		balance -= principalPerPeriod * periodsElapsed
		if balance < 0 {
			balance = 0
		}
	}

	rate := latest.AnnualRate
	loanType := latest.LoanType
	return LoanPosition{
		Balance:     balance,
		Source:      BalanceSourceComputed,
		AnnualRate:  &rate,
		LoanType:    &loanType,
		FixedExpiry: latest.FixedExpiry,
	}
}

// InterestPaid estimates cumulative interest paid from the first loan event
// up to asOf, walking the same periods as LoanBalanceAt and accruing
// balance x rate-per-period x periods-elapsed for each. Monotonically
// non-decreasing in asOf, which is what lets the period composer difference
// two cumulative walks.
func InterestPaid(purchase *domain.PurchaseEvent, loans []domain.LoanEvent, asOf time.Time) float64 {
	active := activeLoanEvents(loans, asOf)
	if len(active) == 0 {
		return 0
	}

	var totalInterest float64
	var balance float64
	if purchase != nil {
		balance = domain.Amount(purchase.LoanAmount)
	}

	for i, loan := range active {
		periodStart := loan.EffectiveDate
		periodEnd := asOf
		if i+1 < len(active) {
			periodEnd = active[i+1].EffectiveDate
		}
		if !periodEnd.After(periodStart) {
			continue
		}

		days := daysBetween(periodStart, clampDate(periodEnd, periodStart, asOf))
		perPeriod := cadenceDays(loan.RepaymentCadence)
		periodsElapsed := float64(days) / perPeriod
		ratePerPeriod := loan.AnnualRate / (daysPerYear / perPeriod)

		if loan.LoanType == domain.LoanTypeInterestOnly {
			totalInterest += balance * ratePerPeriod * periodsElapsed
			continue
		}

		interestPerPeriod := balance * ratePerPeriod
		principalPerPeriod := loan.RepaymentAmount - interestPerPeriod
		if principalPerPeriod < 0 {
			principalPerPeriod = 0
		}
		totalInterest += interestPerPeriod * periodsElapsed
		balance -= principalPerPeriod * periodsElapsed
		if balance < 0 {
			balance = 0
		}
	}

	return totalInterest
}
