package domain

import (
	"github.com/google/uuid"
)

// SnapshotKey identifies one property-year of legacy reporting data.
// It is a value type with ordinary equality; never build composite keys by
// concatenating strings.
type SnapshotKey struct {
	PropertyID uuid.UUID
	Year       int
}

// YearlySnapshot is the legacy "one row per year" reporting record. Fields
// are pointers because partially filled years are normal; a nil field is
// "not recorded", not zero.
type YearlySnapshot struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	Year       int

	// Income
	RentIncome  *float64
	OtherIncome *float64

	// Operating expenses
	Maintenance      *float64
	Insurance        *float64
	CouncilRates     *float64
	StrataFees       *float64
	PropertyMgmtFees *float64
	Utilities        *float64
	OtherExpenses    *float64

	// Debt service
	InterestPaid  *float64
	PrincipalPaid *float64

	Capex       *float64
	LoanBalance *float64

	Notes *string
}

// Key returns the snapshot's composite identity.
func (s *YearlySnapshot) Key() SnapshotKey {
	return SnapshotKey{PropertyID: s.PropertyID, Year: s.Year}
}
