package domain

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository defines the interface for property persistence operations
type PropertyRepository interface {
	// GetByID retrieves a property by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// List retrieves all properties, optionally restricted to active ones
	List(ctx context.Context, onlyActive bool) ([]*Property, error)

	// Create creates a new property
	Create(ctx context.Context, property *Property) error
}

// PortfolioRepository defines the interface for portfolio persistence operations
type PortfolioRepository interface {
	// GetByID retrieves a portfolio by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Portfolio, error)

	// List retrieves all portfolios
	List(ctx context.Context) ([]*Portfolio, error)

	// Create creates a new portfolio with its memberships
	Create(ctx context.Context, portfolio *Portfolio) error
}

// EventRepository loads and mutates the per-property event streams. The
// calculators never see this interface; callers load an EventSet and hand
// it over as a read-only snapshot.
type EventRepository interface {
	// LoadEvents retrieves every event recorded for a property, each
	// stream ordered by its date column
	LoadEvents(ctx context.Context, propertyID uuid.UUID) (*EventSet, error)

	// SavePurchase creates or replaces the property's purchase event
	SavePurchase(ctx context.Context, event *PurchaseEvent) error

	// AddLoanEvent appends a loan change event
	AddLoanEvent(ctx context.Context, event *LoanEvent) error

	// AddTenancyEvent appends a tenancy event
	AddTenancyEvent(ctx context.Context, event *TenancyEvent) error

	// AddRecurringCost appends a recurring cost event
	AddRecurringCost(ctx context.Context, event *RecurringCostEvent) error

	// AddOneOff appends a one-off transaction event
	AddOneOff(ctx context.Context, event *OneOffEvent) error

	// AddValuation appends a valuation event
	AddValuation(ctx context.Context, event *ValuationEvent) error

	// UpdateLoanEvent applies a field patch to an existing loan event and
	// returns the updated event
	UpdateLoanEvent(ctx context.Context, id uuid.UUID, patch LoanEventPatch) (*LoanEvent, error)
}

// SnapshotRepository defines the interface for legacy yearly snapshot
// persistence operations
type SnapshotRepository interface {
	// GetByKey retrieves the snapshot for one property-year, or nil when
	// none exists
	GetByKey(ctx context.Context, key SnapshotKey) (*YearlySnapshot, error)

	// ListByYear retrieves snapshots for the given properties and year,
	// keyed by property ID
	ListByYear(ctx context.Context, year int, propertyIDs []uuid.UUID) (map[uuid.UUID]*YearlySnapshot, error)

	// ListByProperty retrieves all snapshots for a property ordered by year
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*YearlySnapshot, error)

	// Upsert creates the snapshot or replaces the existing row for the
	// same property-year key
	Upsert(ctx context.Context, snapshot *YearlySnapshot) error
}
