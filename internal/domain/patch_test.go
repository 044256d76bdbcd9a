package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanEventPatch_AbsentFieldsLeaveEventAlone(t *testing.T) {
	offset := 150000.0
	original := LoanEvent{
		EffectiveDate:    time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
		LoanType:         LoanTypeInterestOnly,
		AnnualRate:       0.0574,
		RepaymentAmount:  2069.51,
		RepaymentCadence: CadenceMonthly,
		OffsetBalance:    &offset,
	}

	got := LoanEventPatch{}.Apply(original)

	assert.Equal(t, original, got)
}

func TestLoanEventPatch_SetOverwritesOnlyNamedFields(t *testing.T) {
	original := LoanEvent{
		LoanType:         LoanTypeInterestOnly,
		AnnualRate:       0.0574,
		RepaymentAmount:  2069.51,
		RepaymentCadence: CadenceMonthly,
	}

	patch := LoanEventPatch{
		AnnualRate: Set(0.0612),
		LoanType:   Set(LoanTypePrincipalAndInterest),
	}
	got := patch.Apply(original)

	assert.Equal(t, 0.0612, got.AnnualRate)
	assert.Equal(t, LoanTypePrincipalAndInterest, got.LoanType)
	assert.Equal(t, 2069.51, got.RepaymentAmount)
	assert.Equal(t, CadenceMonthly, got.RepaymentCadence)
}

func TestLoanEventPatch_ClearDistinctFromAbsent(t *testing.T) {
	manual := 431167.12
	original := LoanEvent{ManualLoanBalance: &manual}

	cleared := LoanEventPatch{ManualLoanBalance: Clear[float64]()}.Apply(original)
	assert.Nil(t, cleared.ManualLoanBalance, "clear must null the field")

	untouched := LoanEventPatch{}.Apply(original)
	require.NotNil(t, untouched.ManualLoanBalance)
	assert.Equal(t, manual, *untouched.ManualLoanBalance)
}

func TestLoanEventPatch_DoesNotAliasOptionalValues(t *testing.T) {
	original := LoanEvent{}

	got := LoanEventPatch{OffsetBalance: Set(120000.0)}.Apply(original)

	require.NotNil(t, got.OffsetBalance)
	assert.Equal(t, 120000.0, *got.OffsetBalance)
	// The original must stay untouched, and a second apply must not share
	// the pointer with the first.
	assert.Nil(t, original.OffsetBalance)
	again := LoanEventPatch{OffsetBalance: Set(120000.0)}.Apply(original)
	assert.NotSame(t, got.OffsetBalance, again.OffsetBalance)
}

func TestTenancyEventPatch_ClearsWeeklyRent(t *testing.T) {
	rent := 424.0
	original := TenancyEvent{Type: TenancyStart, WeeklyRent: &rent}

	got := TenancyEventPatch{
		Type:       Set(TenancyEnd),
		WeeklyRent: Clear[float64](),
	}.Apply(original)

	assert.Equal(t, TenancyEnd, got.Type)
	assert.Nil(t, got.WeeklyRent)
}

func TestRecurringCostEventPatch_SetsEndDate(t *testing.T) {
	original := RecurringCostEvent{
		Category: "MGMT_FEE",
		FeeType:  FeeTypePercentOfRent,
		Amount:   0.08,
		Cadence:  CadenceMonthly,
	}
	end := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)

	got := RecurringCostEventPatch{EndDate: Set(end)}.Apply(original)

	require.NotNil(t, got.EndDate)
	assert.Equal(t, end, *got.EndDate)
	assert.Equal(t, "MGMT_FEE", got.Category)
}
