package kpi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
	"github.com/MusHusKat/investment-tracker/internal/usecase/engine"
)

// PropertySnapshot pairs a property with its computed position.
type PropertySnapshot struct {
	Property *domain.Property
	KPIs     engine.KPISnapshot

	// Ownership-adjusted figures
	MyShareGrossRent   float64
	MyShareNetCashflow float64
}

// Service computes KPIs for a property by loading its event streams and
// handing them to the calculators. It also records new events, applying the
// little validation computation actually needs.
type Service struct {
	PropertyRepo domain.PropertyRepository
	EventRepo    domain.EventRepository
}

// NewService creates a new KPI Service instance
func NewService(propertyRepo domain.PropertyRepository, eventRepo domain.EventRepository) *Service {
	return &Service{
		PropertyRepo: propertyRepo,
		EventRepo:    eventRepo,
	}
}

// GetSnapshot computes the point-in-time KPI snapshot for one property.
func (s *Service) GetSnapshot(ctx context.Context, propertyID uuid.UUID, asOf time.Time) (*PropertySnapshot, error) {
	property, err := s.PropertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	events, err := s.EventRepo.LoadEvents(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	kpis := engine.ComputeKPIs(*events, property.OwnershipPct, asOf)
	ratio := property.OwnershipRatio()

	return &PropertySnapshot{
		Property:           property,
		KPIs:               kpis,
		MyShareGrossRent:   kpis.GrossRent * ratio,
		MyShareNetCashflow: kpis.NetCashflow * ratio,
	}, nil
}

// GetPeriod computes KPIs for one property over a closed date interval.
func (s *Service) GetPeriod(ctx context.Context, propertyID uuid.UUID, from, to time.Time) (*engine.PeriodKPIs, error) {
	if to.Before(from) {
		return nil, errors.New("period end must not be before period start")
	}

	property, err := s.PropertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	events, err := s.EventRepo.LoadEvents(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	period := engine.ComputeForPeriod(*events, property.OwnershipPct, from, to)
	return &period, nil
}

// RecordPurchase creates or replaces the property's purchase event.
func (s *Service) RecordPurchase(ctx context.Context, event *domain.PurchaseEvent) error {
	if event.PurchasePrice <= 0 {
		return errors.New("purchase price must be positive")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := s.EventRepo.SavePurchase(ctx, event); err != nil {
		return fmt.Errorf("failed to save purchase event: %w", err)
	}
	return nil
}

// RecordLoanChange appends a loan event.
func (s *Service) RecordLoanChange(ctx context.Context, event *domain.LoanEvent) error {
	if event.LoanType != domain.LoanTypeInterestOnly && event.LoanType != domain.LoanTypePrincipalAndInterest {
		return fmt.Errorf("unknown loan type %q", event.LoanType)
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := s.EventRepo.AddLoanEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to save loan event: %w", err)
	}
	return nil
}

// RecordTenancyEvent appends a tenancy event. Starts and rent changes must
// carry a weekly rent; the accrual treats a missing rent as vacancy, which
// is never what those event types mean.
func (s *Service) RecordTenancyEvent(ctx context.Context, event *domain.TenancyEvent) error {
	switch event.Type {
	case domain.TenancyStart, domain.TenancyRentChange:
		if event.WeeklyRent == nil {
			return fmt.Errorf("%s event requires a weekly rent", event.Type)
		}
	case domain.TenancyEnd:
	default:
		return fmt.Errorf("unknown tenancy event type %q", event.Type)
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := s.EventRepo.AddTenancyEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to save tenancy event: %w", err)
	}
	return nil
}

// RecordRecurringCost appends a recurring cost event.
func (s *Service) RecordRecurringCost(ctx context.Context, event *domain.RecurringCostEvent) error {
	if event.FeeType != domain.FeeTypeFixed && event.FeeType != domain.FeeTypePercentOfRent {
		return fmt.Errorf("unknown fee type %q", event.FeeType)
	}
	if event.EndDate != nil && !event.EndDate.After(event.EffectiveDate) {
		return errors.New("recurring cost end date must be after its effective date")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := s.EventRepo.AddRecurringCost(ctx, event); err != nil {
		return fmt.Errorf("failed to save recurring cost event: %w", err)
	}
	return nil
}

// RecordOneOff appends a one-off transaction event.
func (s *Service) RecordOneOff(ctx context.Context, event *domain.OneOffEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := s.EventRepo.AddOneOff(ctx, event); err != nil {
		return fmt.Errorf("failed to save one-off event: %w", err)
	}
	return nil
}

// RecordValuation appends a valuation event.
func (s *Service) RecordValuation(ctx context.Context, event *domain.ValuationEvent) error {
	if event.Value <= 0 {
		return errors.New("valuation value must be positive")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := s.EventRepo.AddValuation(ctx, event); err != nil {
		return fmt.Errorf("failed to save valuation event: %w", err)
	}
	return nil
}

// AmendLoanEvent applies a field patch to an existing loan event.
func (s *Service) AmendLoanEvent(ctx context.Context, id uuid.UUID, patch domain.LoanEventPatch) (*domain.LoanEvent, error) {
	updated, err := s.EventRepo.UpdateLoanEvent(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update loan event: %w", err)
	}
	return updated, nil
}
