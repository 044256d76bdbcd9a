package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoanType distinguishes interest-only loans from amortizing ones
type LoanType string

const (
	LoanTypeInterestOnly         LoanType = "IO"
	LoanTypePrincipalAndInterest LoanType = "PI"
)

// RateType indicates whether the loan rate is fixed or variable
type RateType string

const (
	RateTypeFixed    RateType = "fixed"
	RateTypeVariable RateType = "variable"
)

// Cadence is a repayment or fee frequency
type Cadence string

const (
	CadenceWeekly      Cadence = "weekly"
	CadenceFortnightly Cadence = "fortnightly"
	CadenceMonthly     Cadence = "monthly"
	CadenceQuarterly   Cadence = "quarterly"
	CadenceAnnually    Cadence = "annually"
)

// TenancyEventType marks the kind of change a tenancy event records
type TenancyEventType string

const (
	TenancyStart      TenancyEventType = "START"
	TenancyRentChange TenancyEventType = "RENT_CHANGE"
	TenancyEnd        TenancyEventType = "END"
)

// FeeType distinguishes fixed recurring costs from percentage-of-rent fees
type FeeType string

const (
	FeeTypeFixed         FeeType = "fixed"
	FeeTypePercentOfRent FeeType = "pct_rent"
)

// PurchaseEvent records the acquisition of a property. At most one exists
// per property; its settlement date is the implicit start of the property's
// timeline.
type PurchaseEvent struct {
	ID             uuid.UUID
	PropertyID     uuid.UUID
	SettlementDate time.Time
	PurchasePrice  float64
	Deposit        *float64
	StampDuty      *float64
	LegalFees      *float64
	BuyersAgentFee *float64
	LoanAmount     *float64
}

// AcquisitionCosts returns the sunk costs of the purchase beyond the price:
// stamp duty, legal fees and buyer's-agent fee. Missing fields count as zero.
func (p *PurchaseEvent) AcquisitionCosts() float64 {
	if p == nil {
		return 0
	}
	return Amount(p.StampDuty) + Amount(p.LegalFees) + Amount(p.BuyersAgentFee)
}

// TotalAcquisitionCost returns purchase price plus acquisition costs.
func (p *PurchaseEvent) TotalAcquisitionCost() float64 {
	if p == nil {
		return 0
	}
	return p.PurchasePrice + p.AcquisitionCosts()
}

// LoanEvent records a change in a property's loan rate or structure.
// A manual balance on the chronologically latest event is ground truth for
// the most recent period and always wins over a computed balance.
type LoanEvent struct {
	ID                uuid.UUID
	PropertyID        uuid.UUID
	EffectiveDate     time.Time
	LoanType          LoanType
	RateType          RateType
	AnnualRate        float64 // ratio, e.g. 0.0574
	RepaymentAmount   float64
	RepaymentCadence  Cadence
	FixedExpiry       *time.Time
	OffsetBalance     *float64
	ManualLoanBalance *float64
	Lender            *string
}

// TenancyEvent records a lease starting, the rent changing, or the lease
// ending. The sequence defines a piecewise-constant weekly-rent function;
// gaps between an END and the next START are vacancy.
type TenancyEvent struct {
	ID              uuid.UUID
	PropertyID      uuid.UUID
	Type            TenancyEventType
	EffectiveDate   time.Time
	WeeklyRent      *float64 // present for START / RENT_CHANGE, absent for END
	LeaseTermMonths *int
}

// RecurringCostEvent records an ongoing cost active over
// [EffectiveDate, EndDate). A nil EndDate means still active. Multiple
// costs may share a category; their accruals are summed.
type RecurringCostEvent struct {
	ID            uuid.UUID
	PropertyID    uuid.UUID
	EffectiveDate time.Time
	EndDate       *time.Time
	Category      string
	FeeType       FeeType
	Amount        float64 // currency per cadence for fixed, ratio for pct_rent
	Cadence       Cadence
}

// OneOffEvent records a single dated transaction. Positive amounts are
// income, negative amounts are expenses.
type OneOffEvent struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	Date       time.Time
	Amount     float64
	Category   string
}

// ValuationEvent records an assessed value of the property on a date.
type ValuationEvent struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	Date       time.Time
	Value      float64
	Source     *string
}

// EventSet holds every event recorded for one property. The calculators
// treat it as a read-only snapshot and never mutate or reorder its slices.
type EventSet struct {
	Purchase       *PurchaseEvent
	Loans          []LoanEvent
	Tenancies      []TenancyEvent
	RecurringCosts []RecurringCostEvent
	OneOffs        []OneOffEvent
	Valuations     []ValuationEvent
}

// Amount dereferences an optional currency or rate field, treating a
// missing value as zero.
func Amount(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float64Ptr returns a pointer to v, for building optional event fields.
func Float64Ptr(v float64) *float64 { return &v }

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
