package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
	"github.com/MusHusKat/investment-tracker/internal/usecase/engine"
)

// Service serves the legacy one-row-per-year reporting view and keeps it in
// sync with the event streams.
type Service struct {
	PropertyRepo domain.PropertyRepository
	EventRepo    domain.EventRepository
	SnapshotRepo domain.SnapshotRepository
}

// NewService creates a new snapshot Service instance
func NewService(
	propertyRepo domain.PropertyRepository,
	eventRepo domain.EventRepository,
	snapshotRepo domain.SnapshotRepository,
) *Service {
	return &Service{
		PropertyRepo: propertyRepo,
		EventRepo:    eventRepo,
		SnapshotRepo: snapshotRepo,
	}
}

// PropertyYearView is one property-year with its derived KPIs and the
// movement against the previous year.
type PropertyYearView struct {
	Property *domain.Property
	Snapshot *domain.YearlySnapshot
	KPIs     PropertyKPIs
	YoY      []YoYDelta
}

// PropertyYear computes the KPI view for one property-year.
func (s *Service) PropertyYear(ctx context.Context, propertyID uuid.UUID, year int) (*PropertyYearView, error) {
	property, err := s.PropertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	snap, err := s.SnapshotRepo.GetByKey(ctx, domain.SnapshotKey{PropertyID: propertyID, Year: year})
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("no snapshot recorded for %s in %d", property.Name, year)
	}

	events, err := s.EventRepo.LoadEvents(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	var purchasePrice *float64
	if events.Purchase != nil {
		purchasePrice = &events.Purchase.PurchasePrice
	}

	refValue := ResolveReferenceValue(year, events.Valuations, purchasePrice)
	kpis := ComputeKPIs(snap, refValue, property.OwnershipPct)

	view := &PropertyYearView{Property: property, Snapshot: snap, KPIs: kpis}

	prevSnap, err := s.SnapshotRepo.GetByKey(ctx, domain.SnapshotKey{PropertyID: propertyID, Year: year - 1})
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}
	if prevSnap != nil {
		prevRef := ResolveReferenceValue(year-1, events.Valuations, purchasePrice)
		prevKPIs := ComputeKPIs(prevSnap, prevRef, property.OwnershipPct)
		view.YoY = ComputeYoYDeltas(kpis, &prevKPIs)
	}

	return view, nil
}

// loadYearData assembles the aggregation input for all active properties.
func (s *Service) loadYearData(ctx context.Context, year int) ([]PropertyYearData, error) {
	properties, err := s.PropertyRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	ids := make([]uuid.UUID, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}
	snapshots, err := s.SnapshotRepo.ListByYear(ctx, year, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	data := make([]PropertyYearData, 0, len(properties))
	for _, property := range properties {
		events, err := s.EventRepo.LoadEvents(ctx, property.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load events for %s: %w", property.ID, err)
		}
		var purchasePrice *float64
		if events.Purchase != nil {
			purchasePrice = &events.Purchase.PurchasePrice
		}
		data = append(data, PropertyYearData{
			Property:      property,
			Valuations:    events.Valuations,
			PurchasePrice: purchasePrice,
			Snapshot:      snapshots[property.ID],
		})
	}
	return data, nil
}

// PortfolioYear aggregates KPIs across all active properties for one year.
func (s *Service) PortfolioYear(ctx context.Context, year int) (*AggregatedKPIs, error) {
	data, err := s.loadYearData(ctx, year)
	if err != nil {
		return nil, err
	}
	agg := Aggregate(data, year)
	return &agg, nil
}

// Trend builds the multi-year portfolio trend series.
func (s *Service) Trend(ctx context.Context, years []int) ([]TrendPoint, error) {
	if len(years) == 0 {
		return nil, nil
	}

	// Year data minus snapshots; YearlyTrend swaps the per-year snapshot in
	data, err := s.loadYearData(ctx, years[0])
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(data))
	for i, pd := range data {
		ids[i] = pd.Property.ID
	}
	byYear := make(map[int]map[uuid.UUID]*domain.YearlySnapshot, len(years))
	for _, year := range years {
		snapshots, err := s.SnapshotRepo.ListByYear(ctx, year, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshots for %d: %w", year, err)
		}
		byYear[year] = snapshots
	}

	return YearlyTrend(data, byYear, years), nil
}

// Save validates and upserts one snapshot row.
func (s *Service) Save(ctx context.Context, snap *domain.YearlySnapshot) error {
	if snap.Year < 2000 || snap.Year > 2100 {
		return fmt.Errorf("year %d out of range", snap.Year)
	}
	if snap.PropertyID == uuid.Nil {
		return fmt.Errorf("snapshot needs a property ID")
	}
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if err := s.SnapshotRepo.Upsert(ctx, snap); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// expenseField maps an event category onto the snapshot expense field it
// accrues into. Unknown categories land in OtherExpenses.
func expenseField(snap *domain.YearlySnapshot, category string) **float64 {
	switch strings.ToUpper(category) {
	case "MAINTENANCE", "REPAIRS":
		return &snap.Maintenance
	case "INSURANCE":
		return &snap.Insurance
	case "COUNCIL", "COUNCIL_RATES", "RATES":
		return &snap.CouncilRates
	case "STRATA", "BODY_CORP":
		return &snap.StrataFees
	case "MGMT_FEE", "PM_FEES", "PROPERTY_MGMT":
		return &snap.PropertyMgmtFees
	case "WATER", "UTILITIES", "ELECTRICITY", "GAS":
		return &snap.Utilities
	default:
		return &snap.OtherExpenses
	}
}

func addTo(field **float64, amount float64) {
	if *field == nil {
		v := amount
		*field = &v
		return
	}
	**field += amount
}

// MaterializeYear recomputes the year's snapshot rows from the event
// streams for every active property and upserts them. Properties settled
// after the year's end are skipped. Returns the number of rows written.
func (s *Service) MaterializeYear(ctx context.Context, year int) (int, error) {
	properties, err := s.PropertyRepo.List(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list properties: %w", err)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	written := 0
	for _, property := range properties {
		events, err := s.EventRepo.LoadEvents(ctx, property.ID)
		if err != nil {
			return written, fmt.Errorf("failed to load events for %s: %w", property.ID, err)
		}
		if events.Purchase == nil || events.Purchase.SettlementDate.After(to) {
			continue
		}

		period := engine.ComputeForPeriod(*events, property.OwnershipPct, from, to)

		snap := &domain.YearlySnapshot{
			ID:         uuid.New(),
			PropertyID: property.ID,
			Year:       year,
		}
		addTo(&snap.RentIncome, period.GrossRent)
		for category, amount := range period.RecurringCostsByCategory {
			addTo(expenseField(snap, category), amount)
		}
		if period.OneOffIncome != 0 {
			addTo(&snap.OtherIncome, period.OneOffIncome)
		}
		for _, ev := range events.OneOffs {
			if ev.Date.Before(from) || ev.Date.After(to) || ev.Amount >= 0 {
				continue
			}
			addTo(expenseField(snap, ev.Category), -ev.Amount)
		}
		addTo(&snap.InterestPaid, period.InterestPaid)

		endBalance := engine.LoanBalanceAt(events.Purchase, events.Loans, to).Balance
		startBalance := engine.LoanBalanceAt(events.Purchase, events.Loans, from).Balance
		addTo(&snap.LoanBalance, endBalance)
		if principal := startBalance - endBalance; principal > 0 {
			addTo(&snap.PrincipalPaid, principal)
		}

		if err := s.SnapshotRepo.Upsert(ctx, snap); err != nil {
			return written, fmt.Errorf("failed to upsert snapshot for %s: %w", property.ID, err)
		}
		written++
	}

	return written, nil
}
