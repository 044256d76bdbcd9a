package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// eventRepository implements domain.EventRepository
type eventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) domain.EventRepository {
	return &eventRepository{db: db}
}

// LoadEvents retrieves every event stream for a property, each ordered by
// its date column.
func (r *eventRepository) LoadEvents(ctx context.Context, propertyID uuid.UUID) (*domain.EventSet, error) {
	events := &domain.EventSet{}

	purchase, err := r.loadPurchase(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	events.Purchase = purchase

	if events.Loans, err = r.loadLoans(ctx, propertyID); err != nil {
		return nil, err
	}
	if events.Tenancies, err = r.loadTenancies(ctx, propertyID); err != nil {
		return nil, err
	}
	if events.RecurringCosts, err = r.loadRecurringCosts(ctx, propertyID); err != nil {
		return nil, err
	}
	if events.OneOffs, err = r.loadOneOffs(ctx, propertyID); err != nil {
		return nil, err
	}
	if events.Valuations, err = r.loadValuations(ctx, propertyID); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *eventRepository) loadPurchase(ctx context.Context, propertyID uuid.UUID) (*domain.PurchaseEvent, error) {
	query := `
		SELECT id, property_id, settlement_date, purchase_price, deposit, stamp_duty, legal_fees, buyers_agent_fee, loan_amount
		FROM purchase_events
		WHERE property_id = $1
	`

	var event domain.PurchaseEvent
	var priceStr string
	var deposit, stampDuty, legalFees, agentFee, loanAmount sql.NullString

	err := r.db.QueryRowContext(ctx, query, propertyID).Scan(
		&event.ID,
		&event.PropertyID,
		&event.SettlementDate,
		&priceStr,
		&deposit,
		&stampDuty,
		&legalFees,
		&agentFee,
		&loanAmount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase event: %w", err)
	}

	if event.PurchasePrice, err = parseNumeric(priceStr); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		src sql.NullString
		dst **float64
	}{
		{deposit, &event.Deposit},
		{stampDuty, &event.StampDuty},
		{legalFees, &event.LegalFees},
		{agentFee, &event.BuyersAgentFee},
		{loanAmount, &event.LoanAmount},
	} {
		if *f.dst, err = parseNullNumeric(f.src); err != nil {
			return nil, err
		}
	}

	return &event, nil
}

func (r *eventRepository) loadLoans(ctx context.Context, propertyID uuid.UUID) ([]domain.LoanEvent, error) {
	query := `
		SELECT id, property_id, effective_date, loan_type, rate_type, annual_rate,
		       repayment_amount, repayment_cadence, fixed_expiry, offset_balance, manual_loan_balance, lender
		FROM loan_events
		WHERE property_id = $1
		ORDER BY effective_date
	`

	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load loan events: %w", err)
	}
	defer rows.Close()

	var events []domain.LoanEvent
	for rows.Next() {
		var event domain.LoanEvent
		var rateStr, repaymentStr string
		var fixedExpiry sql.NullTime
		var offset, manual sql.NullString
		var lender sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.PropertyID,
			&event.EffectiveDate,
			&event.LoanType,
			&event.RateType,
			&rateStr,
			&repaymentStr,
			&event.RepaymentCadence,
			&fixedExpiry,
			&offset,
			&manual,
			&lender,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan event: %w", err)
		}

		if event.AnnualRate, err = parseNumeric(rateStr); err != nil {
			return nil, err
		}
		if event.RepaymentAmount, err = parseNumeric(repaymentStr); err != nil {
			return nil, err
		}
		if fixedExpiry.Valid {
			t := fixedExpiry.Time
			event.FixedExpiry = &t
		}
		if event.OffsetBalance, err = parseNullNumeric(offset); err != nil {
			return nil, err
		}
		if event.ManualLoanBalance, err = parseNullNumeric(manual); err != nil {
			return nil, err
		}
		if lender.Valid {
			event.Lender = &lender.String
		}

		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) loadTenancies(ctx context.Context, propertyID uuid.UUID) ([]domain.TenancyEvent, error) {
	query := `
		SELECT id, property_id, event_type, effective_date, weekly_rent, lease_term_months
		FROM tenancy_events
		WHERE property_id = $1
		ORDER BY effective_date
	`

	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenancy events: %w", err)
	}
	defer rows.Close()

	var events []domain.TenancyEvent
	for rows.Next() {
		var event domain.TenancyEvent
		var weeklyRent sql.NullString
		var leaseTerm sql.NullInt64

		err := rows.Scan(
			&event.ID,
			&event.PropertyID,
			&event.Type,
			&event.EffectiveDate,
			&weeklyRent,
			&leaseTerm,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenancy event: %w", err)
		}

		if event.WeeklyRent, err = parseNullNumeric(weeklyRent); err != nil {
			return nil, err
		}
		if leaseTerm.Valid {
			months := int(leaseTerm.Int64)
			event.LeaseTermMonths = &months
		}

		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) loadRecurringCosts(ctx context.Context, propertyID uuid.UUID) ([]domain.RecurringCostEvent, error) {
	query := `
		SELECT id, property_id, effective_date, end_date, category, fee_type, amount, cadence
		FROM recurring_cost_events
		WHERE property_id = $1
		ORDER BY effective_date
	`

	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring cost events: %w", err)
	}
	defer rows.Close()

	var events []domain.RecurringCostEvent
	for rows.Next() {
		var event domain.RecurringCostEvent
		var endDate sql.NullTime
		var amountStr string

		err := rows.Scan(
			&event.ID,
			&event.PropertyID,
			&event.EffectiveDate,
			&endDate,
			&event.Category,
			&event.FeeType,
			&amountStr,
			&event.Cadence,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring cost event: %w", err)
		}

		if endDate.Valid {
			t := endDate.Time
			event.EndDate = &t
		}
		if event.Amount, err = parseNumeric(amountStr); err != nil {
			return nil, err
		}

		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) loadOneOffs(ctx context.Context, propertyID uuid.UUID) ([]domain.OneOffEvent, error) {
	query := `
		SELECT id, property_id, date, amount, category
		FROM one_off_events
		WHERE property_id = $1
		ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load one-off events: %w", err)
	}
	defer rows.Close()

	var events []domain.OneOffEvent
	for rows.Next() {
		var event domain.OneOffEvent
		var amountStr string

		if err := rows.Scan(&event.ID, &event.PropertyID, &event.Date, &amountStr, &event.Category); err != nil {
			return nil, fmt.Errorf("failed to scan one-off event: %w", err)
		}
		if event.Amount, err = parseNumeric(amountStr); err != nil {
			return nil, err
		}

		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) loadValuations(ctx context.Context, propertyID uuid.UUID) ([]domain.ValuationEvent, error) {
	query := `
		SELECT id, property_id, date, value, source
		FROM valuation_events
		WHERE property_id = $1
		ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load valuation events: %w", err)
	}
	defer rows.Close()

	var events []domain.ValuationEvent
	for rows.Next() {
		var event domain.ValuationEvent
		var valueStr string
		var source sql.NullString

		if err := rows.Scan(&event.ID, &event.PropertyID, &event.Date, &valueStr, &source); err != nil {
			return nil, fmt.Errorf("failed to scan valuation event: %w", err)
		}
		if event.Value, err = parseNumeric(valueStr); err != nil {
			return nil, err
		}
		if source.Valid {
			event.Source = &source.String
		}

		events = append(events, event)
	}
	return events, rows.Err()
}

// SavePurchase creates or replaces the property's purchase event. The
// property_id unique constraint makes "at most one purchase" a schema fact.
func (r *eventRepository) SavePurchase(ctx context.Context, event *domain.PurchaseEvent) error {
	query := `
		INSERT INTO purchase_events (id, property_id, settlement_date, purchase_price, deposit, stamp_duty, legal_fees, buyers_agent_fee, loan_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (property_id) DO UPDATE SET
			settlement_date = EXCLUDED.settlement_date,
			purchase_price = EXCLUDED.purchase_price,
			deposit = EXCLUDED.deposit,
			stamp_duty = EXCLUDED.stamp_duty,
			legal_fees = EXCLUDED.legal_fees,
			buyers_agent_fee = EXCLUDED.buyers_agent_fee,
			loan_amount = EXCLUDED.loan_amount
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.PropertyID,
		event.SettlementDate,
		numericArg(event.PurchasePrice),
		nullNumericArg(event.Deposit),
		nullNumericArg(event.StampDuty),
		nullNumericArg(event.LegalFees),
		nullNumericArg(event.BuyersAgentFee),
		nullNumericArg(event.LoanAmount),
	)
	if err != nil {
		return fmt.Errorf("failed to save purchase event: %w", err)
	}
	return nil
}

// AddLoanEvent appends a loan change event
func (r *eventRepository) AddLoanEvent(ctx context.Context, event *domain.LoanEvent) error {
	query := `
		INSERT INTO loan_events (id, property_id, effective_date, loan_type, rate_type, annual_rate,
		                         repayment_amount, repayment_cadence, fixed_expiry, offset_balance, manual_loan_balance, lender)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var lender interface{}
	if event.Lender != nil {
		lender = *event.Lender
	}
	var fixedExpiry interface{}
	if event.FixedExpiry != nil {
		fixedExpiry = *event.FixedExpiry
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.PropertyID,
		event.EffectiveDate,
		string(event.LoanType),
		string(event.RateType),
		numericArg(event.AnnualRate),
		numericArg(event.RepaymentAmount),
		string(event.RepaymentCadence),
		fixedExpiry,
		nullNumericArg(event.OffsetBalance),
		nullNumericArg(event.ManualLoanBalance),
		lender,
	)
	if err != nil {
		return fmt.Errorf("failed to add loan event: %w", err)
	}
	return nil
}

// AddTenancyEvent appends a tenancy event
func (r *eventRepository) AddTenancyEvent(ctx context.Context, event *domain.TenancyEvent) error {
	query := `
		INSERT INTO tenancy_events (id, property_id, event_type, effective_date, weekly_rent, lease_term_months)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var leaseTerm interface{}
	if event.LeaseTermMonths != nil {
		leaseTerm = *event.LeaseTermMonths
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.PropertyID,
		string(event.Type),
		event.EffectiveDate,
		nullNumericArg(event.WeeklyRent),
		leaseTerm,
	)
	if err != nil {
		return fmt.Errorf("failed to add tenancy event: %w", err)
	}
	return nil
}

// AddRecurringCost appends a recurring cost event
func (r *eventRepository) AddRecurringCost(ctx context.Context, event *domain.RecurringCostEvent) error {
	query := `
		INSERT INTO recurring_cost_events (id, property_id, effective_date, end_date, category, fee_type, amount, cadence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var endDate interface{}
	if event.EndDate != nil {
		endDate = *event.EndDate
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.PropertyID,
		event.EffectiveDate,
		endDate,
		event.Category,
		string(event.FeeType),
		numericArg(event.Amount),
		string(event.Cadence),
	)
	if err != nil {
		return fmt.Errorf("failed to add recurring cost event: %w", err)
	}
	return nil
}

// AddOneOff appends a one-off transaction event
func (r *eventRepository) AddOneOff(ctx context.Context, event *domain.OneOffEvent) error {
	query := `
		INSERT INTO one_off_events (id, property_id, date, amount, category)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.PropertyID,
		event.Date,
		numericArg(event.Amount),
		event.Category,
	)
	if err != nil {
		return fmt.Errorf("failed to add one-off event: %w", err)
	}
	return nil
}

// AddValuation appends a valuation event
func (r *eventRepository) AddValuation(ctx context.Context, event *domain.ValuationEvent) error {
	query := `
		INSERT INTO valuation_events (id, property_id, date, value, source)
		VALUES ($1, $2, $3, $4, $5)
	`

	var source interface{}
	if event.Source != nil {
		source = *event.Source
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.PropertyID,
		event.Date,
		numericArg(event.Value),
		source,
	)
	if err != nil {
		return fmt.Errorf("failed to add valuation event: %w", err)
	}
	return nil
}

// UpdateLoanEvent applies a field patch to an existing loan event inside a
// transaction and returns the updated event.
func (r *eventRepository) UpdateLoanEvent(ctx context.Context, id uuid.UUID, patch domain.LoanEventPatch) (*domain.LoanEvent, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, property_id, effective_date, loan_type, rate_type, annual_rate,
		       repayment_amount, repayment_cadence, fixed_expiry, offset_balance, manual_loan_balance, lender
		FROM loan_events
		WHERE id = $1
		FOR UPDATE
	`

	var event domain.LoanEvent
	var rateStr, repaymentStr string
	var fixedExpiry sql.NullTime
	var offset, manual, lender sql.NullString

	err = tx.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.PropertyID,
		&event.EffectiveDate,
		&event.LoanType,
		&event.RateType,
		&rateStr,
		&repaymentStr,
		&event.RepaymentCadence,
		&fixedExpiry,
		&offset,
		&manual,
		&lender,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loan event not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load loan event: %w", err)
	}

	if event.AnnualRate, err = parseNumeric(rateStr); err != nil {
		return nil, err
	}
	if event.RepaymentAmount, err = parseNumeric(repaymentStr); err != nil {
		return nil, err
	}
	if fixedExpiry.Valid {
		t := fixedExpiry.Time
		event.FixedExpiry = &t
	}
	if event.OffsetBalance, err = parseNullNumeric(offset); err != nil {
		return nil, err
	}
	if event.ManualLoanBalance, err = parseNullNumeric(manual); err != nil {
		return nil, err
	}
	if lender.Valid {
		event.Lender = &lender.String
	}

	updated := patch.Apply(event)

	updateQuery := `
		UPDATE loan_events
		SET effective_date = $2, loan_type = $3, rate_type = $4, annual_rate = $5,
		    repayment_amount = $6, repayment_cadence = $7, fixed_expiry = $8,
		    offset_balance = $9, manual_loan_balance = $10, lender = $11
		WHERE id = $1
	`

	var updatedFixedExpiry interface{}
	if updated.FixedExpiry != nil {
		updatedFixedExpiry = *updated.FixedExpiry
	}
	var updatedLender interface{}
	if updated.Lender != nil {
		updatedLender = *updated.Lender
	}

	_, err = tx.ExecContext(ctx, updateQuery,
		updated.ID,
		updated.EffectiveDate,
		string(updated.LoanType),
		string(updated.RateType),
		numericArg(updated.AnnualRate),
		numericArg(updated.RepaymentAmount),
		string(updated.RepaymentCadence),
		updatedFixedExpiry,
		nullNumericArg(updated.OffsetBalance),
		nullNumericArg(updated.ManualLoanBalance),
		updatedLender,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update loan event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit loan event update: %w", err)
	}

	return &updated, nil
}
