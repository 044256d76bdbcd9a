package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
	"github.com/MusHusKat/investment-tracker/internal/usecase/engine"
)

// Properties without an explicit appreciation rate fall back to 5%.
const defaultFallbackRate = 0.05

// maxForecastYear bounds requested horizons; anything beyond is noise.
const maxForecastYear = 30

var defaultForecastYears = []int{1, 2, 3, 5, 7, 10, 15, 20}

// Request selects the properties to project and the appreciation schedule
// to apply. PortfolioIDs pull in every property of the named portfolios.
type Request struct {
	PropertyIDs  []uuid.UUID
	PortfolioIDs []uuid.UUID
	Schedule     []engine.AppreciationSegment
	Years        []int
	AsOf         time.Time
}

// PropertyForecast is one property's projected trajectory.
type PropertyForecast struct {
	PropertyID uuid.UUID
	Name       string
	Forecast   []engine.ForecastPoint
}

// Result is the full projection response: per-property trajectories plus the
// portfolio-level aggregate.
type Result struct {
	Properties []PropertyForecast
	Aggregate  []engine.ForecastPoint
}

// Service runs forecasts across properties and portfolios.
type Service struct {
	PropertyRepo  domain.PropertyRepository
	PortfolioRepo domain.PortfolioRepository
	EventRepo     domain.EventRepository
}

// NewService creates a new projection Service instance
func NewService(
	propertyRepo domain.PropertyRepository,
	portfolioRepo domain.PortfolioRepository,
	eventRepo domain.EventRepository,
) *Service {
	return &Service{
		PropertyRepo:  propertyRepo,
		PortfolioRepo: portfolioRepo,
		EventRepo:     eventRepo,
	}
}

// sanitizeYears keeps horizons in (0, maxForecastYear], falling back to the
// default ladder when nothing usable remains.
func sanitizeYears(years []int) []int {
	var kept []int
	for _, y := range years {
		if y > 0 && y <= maxForecastYear {
			kept = append(kept, y)
		}
	}
	if len(kept) == 0 {
		return defaultForecastYears
	}
	return kept
}

// Run validates the request, resolves the property set, forecasts each
// property and aggregates the results.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Schedule) == 0 {
		return nil, errors.New("appreciation schedule must not be empty")
	}
	for i, seg := range req.Schedule {
		if seg.Years <= 0 {
			return nil, fmt.Errorf("appreciation segment %d: years must be positive", i)
		}
	}

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	years := sanitizeYears(req.Years)

	// Dedupe while keeping request order so the response is deterministic
	seen := make(map[uuid.UUID]struct{}, len(req.PropertyIDs))
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, id := range req.PropertyIDs {
		add(id)
	}
	for _, portfolioID := range req.PortfolioIDs {
		portfolio, err := s.PortfolioRepo.GetByID(ctx, portfolioID)
		if err != nil {
			return nil, fmt.Errorf("failed to load portfolio: %w", err)
		}
		for _, id := range portfolio.PropertyIDs {
			add(id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("no properties selected")
	}

	result := &Result{}
	var perProperty [][]engine.ForecastPoint

	for _, id := range ids {
		property, err := s.PropertyRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load property: %w", err)
		}
		if !property.IsActive {
			continue
		}

		events, err := s.EventRepo.LoadEvents(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load events for %s: %w", id, err)
		}

		fallbackRate := defaultFallbackRate
		if property.AppreciationRate != nil {
			fallbackRate = *property.AppreciationRate
		}

		forecast, err := engine.ComputeForecast(*events, property.OwnershipPct, fallbackRate, asOf, years, req.Schedule)
		if err != nil {
			return nil, fmt.Errorf("forecast for %s: %w", property.Name, err)
		}

		result.Properties = append(result.Properties, PropertyForecast{
			PropertyID: id,
			Name:       property.Name,
			Forecast:   forecast,
		})
		perProperty = append(perProperty, forecast)
	}

	result.Aggregate = engine.AggregateForecast(perProperty, years)
	return result, nil
}
