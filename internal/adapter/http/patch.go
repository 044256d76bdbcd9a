package http

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// Patch bodies need three states per field: absent, null and set. Binding
// into pointer structs collapses absent and null, so the body is decoded
// into raw messages and lifted field by field.

func patchField[T any](raw map[string]json.RawMessage, key string) (domain.Field[T], error) {
	msg, ok := raw[key]
	if !ok {
		return domain.Field[T]{}, nil
	}
	if string(msg) == "null" {
		return domain.Clear[T](), nil
	}
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return domain.Field[T]{}, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return domain.Set(v), nil
}

func patchDate(raw map[string]json.RawMessage, key string) (domain.Field[time.Time], error) {
	field, err := patchField[string](raw, key)
	if err != nil || !field.Present || field.Null {
		return domain.Field[time.Time]{Present: field.Present, Null: field.Null}, err
	}
	t, err := parseDate(field.Value)
	if err != nil {
		return domain.Field[time.Time]{}, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return domain.Set(t), nil
}

func decodeLoanPatch(r io.Reader) (domain.LoanEventPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return domain.LoanEventPatch{}, fmt.Errorf("invalid patch body: %w", err)
	}

	var patch domain.LoanEventPatch
	var err error

	if patch.EffectiveDate, err = patchDate(raw, "effective_date"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.LoanType, err = patchField[domain.LoanType](raw, "loan_type"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.RateType, err = patchField[domain.RateType](raw, "rate_type"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.AnnualRate, err = patchField[float64](raw, "annual_rate"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.RepaymentAmount, err = patchField[float64](raw, "repayment_amount"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.RepaymentCadence, err = patchField[domain.Cadence](raw, "repayment_cadence"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.FixedExpiry, err = patchDate(raw, "fixed_expiry"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.OffsetBalance, err = patchField[float64](raw, "offset_balance"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.ManualLoanBalance, err = patchField[float64](raw, "manual_loan_balance"); err != nil {
		return domain.LoanEventPatch{}, err
	}
	if patch.Lender, err = patchField[string](raw, "lender"); err != nil {
		return domain.LoanEventPatch{}, err
	}

	return patch, nil
}
