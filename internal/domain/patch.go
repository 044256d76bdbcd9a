package domain

import "time"

// Field is a three-state patch value for one event field: absent (leave the
// field alone), null (clear an optional field), or set to a concrete value.
// "Unset" and "set to null" are never represented the same way.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Set returns a Field carrying a concrete value.
func Set[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// Clear returns a Field that clears an optional target field.
func Clear[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

// apply overwrites *target when the field is present. Null is ignored for
// required fields; use applyOpt for optional ones.
func (f Field[T]) apply(target *T) {
	if f.Present && !f.Null {
		*target = f.Value
	}
}

// applyOpt overwrites an optional target: nil when the field is null, a
// fresh pointer when it carries a value.
func (f Field[T]) applyOpt(target **T) {
	if !f.Present {
		return
	}
	if f.Null {
		*target = nil
		return
	}
	v := f.Value
	*target = &v
}

// LoanEventPatch is a partial update for a LoanEvent. Only fields present
// in the patch are written.
type LoanEventPatch struct {
	EffectiveDate     Field[time.Time]
	LoanType          Field[LoanType]
	RateType          Field[RateType]
	AnnualRate        Field[float64]
	RepaymentAmount   Field[float64]
	RepaymentCadence  Field[Cadence]
	FixedExpiry       Field[time.Time]
	OffsetBalance     Field[float64]
	ManualLoanBalance Field[float64]
	Lender            Field[string]
}

// Apply merges the patch into a copy of e and returns the copy.
func (p LoanEventPatch) Apply(e LoanEvent) LoanEvent {
	p.EffectiveDate.apply(&e.EffectiveDate)
	p.LoanType.apply(&e.LoanType)
	p.RateType.apply(&e.RateType)
	p.AnnualRate.apply(&e.AnnualRate)
	p.RepaymentAmount.apply(&e.RepaymentAmount)
	p.RepaymentCadence.apply(&e.RepaymentCadence)
	p.FixedExpiry.applyOpt(&e.FixedExpiry)
	p.OffsetBalance.applyOpt(&e.OffsetBalance)
	p.ManualLoanBalance.applyOpt(&e.ManualLoanBalance)
	p.Lender.applyOpt(&e.Lender)
	return e
}

// TenancyEventPatch is a partial update for a TenancyEvent.
type TenancyEventPatch struct {
	Type            Field[TenancyEventType]
	EffectiveDate   Field[time.Time]
	WeeklyRent      Field[float64]
	LeaseTermMonths Field[int]
}

// Apply merges the patch into a copy of e and returns the copy.
func (p TenancyEventPatch) Apply(e TenancyEvent) TenancyEvent {
	p.Type.apply(&e.Type)
	p.EffectiveDate.apply(&e.EffectiveDate)
	p.WeeklyRent.applyOpt(&e.WeeklyRent)
	p.LeaseTermMonths.applyOpt(&e.LeaseTermMonths)
	return e
}

// RecurringCostEventPatch is a partial update for a RecurringCostEvent.
type RecurringCostEventPatch struct {
	EffectiveDate Field[time.Time]
	EndDate       Field[time.Time]
	Category      Field[string]
	FeeType       Field[FeeType]
	Amount        Field[float64]
	Cadence       Field[Cadence]
}

// Apply merges the patch into a copy of e and returns the copy.
func (p RecurringCostEventPatch) Apply(e RecurringCostEvent) RecurringCostEvent {
	p.EffectiveDate.apply(&e.EffectiveDate)
	p.EndDate.applyOpt(&e.EndDate)
	p.Category.apply(&e.Category)
	p.FeeType.apply(&e.FeeType)
	p.Amount.apply(&e.Amount)
	p.Cadence.apply(&e.Cadence)
	return e
}

// ValuationEventPatch is a partial update for a ValuationEvent.
type ValuationEventPatch struct {
	Date   Field[time.Time]
	Value  Field[float64]
	Source Field[string]
}

// Apply merges the patch into a copy of e and returns the copy.
func (p ValuationEventPatch) Apply(e ValuationEvent) ValuationEvent {
	p.Date.apply(&e.Date)
	p.Value.apply(&e.Value)
	p.Source.applyOpt(&e.Source)
	return e
}

// OneOffEventPatch is a partial update for a OneOffEvent.
type OneOffEventPatch struct {
	Date     Field[time.Time]
	Amount   Field[float64]
	Category Field[string]
}

// Apply merges the patch into a copy of e and returns the copy.
func (p OneOffEventPatch) Apply(e OneOffEvent) OneOffEvent {
	p.Date.apply(&e.Date)
	p.Amount.apply(&e.Amount)
	p.Category.apply(&e.Category)
	return e
}
