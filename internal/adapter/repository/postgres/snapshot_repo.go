package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new yearly snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

const snapshotColumns = `id, property_id, year, rent_income, other_income,
	maintenance, insurance, council_rates, strata_fees, property_mgmt_fees, utilities, other_expenses,
	interest_paid, principal_paid, capex, loan_balance, notes`

func scanSnapshot(scan func(dest ...interface{}) error) (*domain.YearlySnapshot, error) {
	var snapshot domain.YearlySnapshot
	var notes sql.NullString
	numerics := make([]sql.NullString, 13)

	dest := []interface{}{&snapshot.ID, &snapshot.PropertyID, &snapshot.Year}
	for i := range numerics {
		dest = append(dest, &numerics[i])
	}
	dest = append(dest, &notes)

	if err := scan(dest...); err != nil {
		return nil, err
	}

	fields := []**float64{
		&snapshot.RentIncome, &snapshot.OtherIncome,
		&snapshot.Maintenance, &snapshot.Insurance, &snapshot.CouncilRates,
		&snapshot.StrataFees, &snapshot.PropertyMgmtFees, &snapshot.Utilities, &snapshot.OtherExpenses,
		&snapshot.InterestPaid, &snapshot.PrincipalPaid, &snapshot.Capex, &snapshot.LoanBalance,
	}
	for i, field := range fields {
		v, err := parseNullNumeric(numerics[i])
		if err != nil {
			return nil, err
		}
		*field = v
	}
	if notes.Valid {
		snapshot.Notes = &notes.String
	}

	return &snapshot, nil
}

// GetByKey retrieves the snapshot for one property-year, or nil when none exists
func (r *snapshotRepository) GetByKey(ctx context.Context, key domain.SnapshotKey) (*domain.YearlySnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM yearly_snapshots
		WHERE property_id = $1 AND year = $2
	`

	snapshot, err := scanSnapshot(r.db.QueryRowContext(ctx, query, key.PropertyID, key.Year).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return snapshot, nil
}

// ListByYear retrieves snapshots for the given properties and year, keyed by property ID
func (r *snapshotRepository) ListByYear(ctx context.Context, year int, propertyIDs []uuid.UUID) (map[uuid.UUID]*domain.YearlySnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM yearly_snapshots
		WHERE year = $1 AND property_id = ANY($2)
	`

	ids := make([]string, len(propertyIDs))
	for i, id := range propertyIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx, query, year, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots by year: %w", err)
	}
	defer rows.Close()

	snapshots := make(map[uuid.UUID]*domain.YearlySnapshot)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots[snapshot.PropertyID] = snapshot
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// ListByProperty retrieves all snapshots for a property ordered by year
func (r *snapshotRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.YearlySnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM yearly_snapshots
		WHERE property_id = $1
		ORDER BY year
	`

	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots by property: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.YearlySnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// Upsert creates the snapshot or replaces the existing row for the same
// property-year key
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.YearlySnapshot) error {
	query := `
		INSERT INTO yearly_snapshots (id, property_id, year, rent_income, other_income,
			maintenance, insurance, council_rates, strata_fees, property_mgmt_fees, utilities, other_expenses,
			interest_paid, principal_paid, capex, loan_balance, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		ON CONFLICT (property_id, year) DO UPDATE SET
			rent_income = EXCLUDED.rent_income,
			other_income = EXCLUDED.other_income,
			maintenance = EXCLUDED.maintenance,
			insurance = EXCLUDED.insurance,
			council_rates = EXCLUDED.council_rates,
			strata_fees = EXCLUDED.strata_fees,
			property_mgmt_fees = EXCLUDED.property_mgmt_fees,
			utilities = EXCLUDED.utilities,
			other_expenses = EXCLUDED.other_expenses,
			interest_paid = EXCLUDED.interest_paid,
			principal_paid = EXCLUDED.principal_paid,
			capex = EXCLUDED.capex,
			loan_balance = EXCLUDED.loan_balance,
			notes = EXCLUDED.notes,
			updated_at = NOW()
	`

	var notes interface{}
	if snapshot.Notes != nil {
		notes = *snapshot.Notes
	}

	_, err := r.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.PropertyID,
		snapshot.Year,
		nullNumericArg(snapshot.RentIncome),
		nullNumericArg(snapshot.OtherIncome),
		nullNumericArg(snapshot.Maintenance),
		nullNumericArg(snapshot.Insurance),
		nullNumericArg(snapshot.CouncilRates),
		nullNumericArg(snapshot.StrataFees),
		nullNumericArg(snapshot.PropertyMgmtFees),
		nullNumericArg(snapshot.Utilities),
		nullNumericArg(snapshot.OtherExpenses),
		nullNumericArg(snapshot.InterestPaid),
		nullNumericArg(snapshot.PrincipalPaid),
		nullNumericArg(snapshot.Capex),
		nullNumericArg(snapshot.LoanBalance),
		notes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}
