package seeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// Fixed UUIDs so re-running the seeder is idempotent
var (
	DemoPropertyFrenchville = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	DemoPropertyTuartHill   = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	DemoPropertyChelsea     = uuid.MustParse("00000000-0000-0000-0000-0000000000a3")
	DemoPortfolioAll        = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
)

// demoProperty bundles a property with its full event history
type demoProperty struct {
	Property       domain.Property
	Purchase       domain.PurchaseEvent
	Loans          []domain.LoanEvent
	Tenancies      []domain.TenancyEvent
	RecurringCosts []domain.RecurringCostEvent
	OneOffs        []domain.OneOffEvent
	Valuations     []domain.ValuationEvent
}

// DemoSeeder populates the database with a small three-property portfolio
// so a fresh install has something to show.
type DemoSeeder struct {
	PropertyRepo  domain.PropertyRepository
	PortfolioRepo domain.PortfolioRepository
	EventRepo     domain.EventRepository
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(
	propertyRepo domain.PropertyRepository,
	portfolioRepo domain.PortfolioRepository,
	eventRepo domain.EventRepository,
) *DemoSeeder {
	return &DemoSeeder{
		PropertyRepo:  propertyRepo,
		PortfolioRepo: portfolioRepo,
		EventRepo:     eventRepo,
	}
}

// Seed ensures the demo properties and portfolio exist. Properties that are
// already present are left untouched, events included, so a re-run never
// duplicates history.
func (s *DemoSeeder) Seed(ctx context.Context) error {
	for _, demo := range demoProperties() {
		existing, err := s.PropertyRepo.GetByID(ctx, demo.Property.ID)
		if err != nil && !strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("failed to check demo property: %w", err)
		}
		if existing != nil {
			continue
		}

		if err := s.seedProperty(ctx, demo); err != nil {
			return fmt.Errorf("failed to seed %s: %w", demo.Property.Name, err)
		}
	}

	existing, err := s.PortfolioRepo.GetByID(ctx, DemoPortfolioAll)
	if err != nil && !strings.Contains(err.Error(), "not found") {
		return fmt.Errorf("failed to check demo portfolio: %w", err)
	}
	if existing == nil {
		portfolio := &domain.Portfolio{
			ID:   DemoPortfolioAll,
			Name: "All Properties",
			PropertyIDs: []uuid.UUID{
				DemoPropertyFrenchville,
				DemoPropertyTuartHill,
				DemoPropertyChelsea,
			},
		}
		if err := s.PortfolioRepo.Create(ctx, portfolio); err != nil {
			return fmt.Errorf("failed to seed demo portfolio: %w", err)
		}
	}

	return nil
}

func (s *DemoSeeder) seedProperty(ctx context.Context, demo demoProperty) error {
	if err := s.PropertyRepo.Create(ctx, &demo.Property); err != nil {
		return err
	}
	if err := s.EventRepo.SavePurchase(ctx, &demo.Purchase); err != nil {
		return err
	}
	for i := range demo.Loans {
		if err := s.EventRepo.AddLoanEvent(ctx, &demo.Loans[i]); err != nil {
			return err
		}
	}
	for i := range demo.Tenancies {
		if err := s.EventRepo.AddTenancyEvent(ctx, &demo.Tenancies[i]); err != nil {
			return err
		}
	}
	for i := range demo.RecurringCosts {
		if err := s.EventRepo.AddRecurringCost(ctx, &demo.RecurringCosts[i]); err != nil {
			return err
		}
	}
	for i := range demo.OneOffs {
		if err := s.EventRepo.AddOneOff(ctx, &demo.OneOffs[i]); err != nil {
			return err
		}
	}
	for i := range demo.Valuations {
		if err := s.EventRepo.AddValuation(ctx, &demo.Valuations[i]); err != nil {
			return err
		}
	}
	return nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func demoProperties() []demoProperty {
	frenchville := demoProperty{
		Property: domain.Property{
			ID:           DemoPropertyFrenchville,
			Name:         "193 Frenchville Rd",
			Address:      domain.StringPtr("193 Frenchville Road, Frenchville QLD 4701"),
			Tags:         []string{"house", "queensland", "rockhampton"},
			OwnershipPct: 100,
			IsActive:     true,
		},
		Purchase: domain.PurchaseEvent{
			ID:             uuid.New(),
			PropertyID:     DemoPropertyFrenchville,
			SettlementDate: date(2024, 11, 1),
			PurchasePrice:  555000,
			Deposit:        domain.Float64Ptr(122100),
			StampDuty:      domain.Float64Ptr(18000),
			LegalFees:      domain.Float64Ptr(2000),
			BuyersAgentFee: domain.Float64Ptr(13875),
			LoanAmount:     domain.Float64Ptr(432900),
		},
		Loans: []domain.LoanEvent{{
			ID:                uuid.New(),
			PropertyID:        DemoPropertyFrenchville,
			EffectiveDate:     date(2024, 11, 1),
			LoanType:          domain.LoanTypeInterestOnly,
			RateType:          domain.RateTypeVariable,
			AnnualRate:        0.0574,
			RepaymentAmount:   2069.51,
			RepaymentCadence:  domain.CadenceMonthly,
			OffsetBalance:     domain.Float64Ptr(150000),
			ManualLoanBalance: domain.Float64Ptr(431167.12),
			Lender:            domain.StringPtr("Unknown"),
		}},
		Tenancies: []domain.TenancyEvent{{
			ID:              uuid.New(),
			PropertyID:      DemoPropertyFrenchville,
			Type:            domain.TenancyStart,
			EffectiveDate:   date(2024, 11, 15),
			WeeklyRent:      domain.Float64Ptr(424),
			LeaseTermMonths: intPtr(12),
		}},
		RecurringCosts: []domain.RecurringCostEvent{
			{
				ID: uuid.New(), PropertyID: DemoPropertyFrenchville,
				EffectiveDate: date(2024, 11, 15),
				Category:      "MGMT_FEE", FeeType: domain.FeeTypePercentOfRent,
				Amount: 0.08, Cadence: domain.CadenceMonthly,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyFrenchville,
				EffectiveDate: date(2024, 11, 1),
				Category:      "INSURANCE", FeeType: domain.FeeTypeFixed,
				Amount: 2042, Cadence: domain.CadenceAnnually,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyFrenchville,
				EffectiveDate: date(2024, 11, 1),
				Category:      "STRATA", FeeType: domain.FeeTypeFixed,
				Amount: 1500, Cadence: domain.CadenceAnnually,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyFrenchville,
				EffectiveDate: date(2024, 11, 1),
				Category:      "WATER", FeeType: domain.FeeTypeFixed,
				Amount: 2500, Cadence: domain.CadenceAnnually,
			},
		},
		OneOffs: []domain.OneOffEvent{{
			ID: uuid.New(), PropertyID: DemoPropertyFrenchville,
			Date: date(2025, 6, 30), Amount: -2500, Category: "MAINTENANCE",
		}},
		Valuations: []domain.ValuationEvent{{
			ID: uuid.New(), PropertyID: DemoPropertyFrenchville,
			Date: date(2025, 12, 31), Value: 640000, Source: domain.StringPtr("SELF"),
		}},
	}

	tuartHill := demoProperty{
		Property: domain.Property{
			ID:           DemoPropertyTuartHill,
			Name:         "22/208 North Beach Dr",
			Address:      domain.StringPtr("22/208 North Beach Drive, Tuart Hill WA 6060"),
			Tags:         []string{"villa", "western-australia", "tuart-hill"},
			OwnershipPct: 100,
			IsActive:     true,
		},
		Purchase: domain.PurchaseEvent{
			ID:             uuid.New(),
			PropertyID:     DemoPropertyTuartHill,
			SettlementDate: date(2025, 2, 1),
			PurchasePrice:  530000,
			Deposit:        domain.Float64Ptr(106000),
			StampDuty:      domain.Float64Ptr(19190),
			LegalFees:      domain.Float64Ptr(2000),
			BuyersAgentFee: domain.Float64Ptr(13250),
			LoanAmount:     domain.Float64Ptr(424000),
		},
		Loans: []domain.LoanEvent{{
			ID:                uuid.New(),
			PropertyID:        DemoPropertyTuartHill,
			EffectiveDate:     date(2025, 2, 1),
			LoanType:          domain.LoanTypeInterestOnly,
			RateType:          domain.RateTypeVariable,
			AnnualRate:        0.0499,
			RepaymentAmount:   1763.33,
			RepaymentCadence:  domain.CadenceMonthly,
			ManualLoanBalance: domain.Float64Ptr(424000),
			Lender:            domain.StringPtr("Unknown"),
		}},
		Tenancies: []domain.TenancyEvent{{
			ID:              uuid.New(),
			PropertyID:      DemoPropertyTuartHill,
			Type:            domain.TenancyStart,
			EffectiveDate:   date(2025, 3, 1),
			WeeklyRent:      domain.Float64Ptr(420),
			LeaseTermMonths: intPtr(12),
		}},
		RecurringCosts: []domain.RecurringCostEvent{
			{
				ID: uuid.New(), PropertyID: DemoPropertyTuartHill,
				EffectiveDate: date(2025, 3, 1),
				Category:      "MGMT_FEE", FeeType: domain.FeeTypePercentOfRent,
				Amount: 0.0715, Cadence: domain.CadenceMonthly,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyTuartHill,
				EffectiveDate: date(2025, 2, 1),
				Category:      "STRATA", FeeType: domain.FeeTypeFixed,
				Amount: 3000, Cadence: domain.CadenceAnnually,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyTuartHill,
				EffectiveDate: date(2025, 2, 1),
				Category:      "COUNCIL", FeeType: domain.FeeTypeFixed,
				Amount: 2500, Cadence: domain.CadenceAnnually,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyTuartHill,
				EffectiveDate: date(2025, 2, 1),
				Category:      "WATER", FeeType: domain.FeeTypeFixed,
				Amount: 325, Cadence: domain.CadenceAnnually,
			},
		},
		OneOffs: []domain.OneOffEvent{{
			ID: uuid.New(), PropertyID: DemoPropertyTuartHill,
			Date: date(2025, 9, 30), Amount: -2500, Category: "MAINTENANCE",
		}},
		Valuations: []domain.ValuationEvent{{
			ID: uuid.New(), PropertyID: DemoPropertyTuartHill,
			Date: date(2025, 12, 31), Value: 600000, Source: domain.StringPtr("SELF"),
		}},
	}

	chelsea := demoProperty{
		Property: domain.Property{
			ID:           DemoPropertyChelsea,
			Name:         "6/1 Golden Avenue",
			Address:      domain.StringPtr("6/1 Golden Avenue, Chelsea VIC 3196"),
			Tags:         []string{"villa", "victoria", "chelsea"},
			OwnershipPct: 100,
			IsActive:     true,
		},
		Purchase: domain.PurchaseEvent{
			ID:             uuid.New(),
			PropertyID:     DemoPropertyChelsea,
			SettlementDate: date(2026, 2, 1),
			PurchasePrice:  700000,
			Deposit:        domain.Float64Ptr(140000),
			StampDuty:      domain.Float64Ptr(37070),
			LegalFees:      domain.Float64Ptr(2500),
			BuyersAgentFee: domain.Float64Ptr(17500),
			LoanAmount:     domain.Float64Ptr(560000),
		},
		Loans: []domain.LoanEvent{{
			ID:                uuid.New(),
			PropertyID:        DemoPropertyChelsea,
			EffectiveDate:     date(2026, 2, 1),
			LoanType:          domain.LoanTypeInterestOnly,
			RateType:          domain.RateTypeVariable,
			AnnualRate:        0.0589,
			RepaymentAmount:   2747.33,
			RepaymentCadence:  domain.CadenceMonthly,
			ManualLoanBalance: domain.Float64Ptr(560000),
			Lender:            domain.StringPtr("Unknown"),
		}},
		Tenancies: []domain.TenancyEvent{{
			ID:              uuid.New(),
			PropertyID:      DemoPropertyChelsea,
			Type:            domain.TenancyStart,
			EffectiveDate:   date(2026, 2, 15),
			WeeklyRent:      domain.Float64Ptr(570),
			LeaseTermMonths: intPtr(12),
		}},
		RecurringCosts: []domain.RecurringCostEvent{
			{
				ID: uuid.New(), PropertyID: DemoPropertyChelsea,
				EffectiveDate: date(2026, 2, 15),
				Category:      "MGMT_FEE", FeeType: domain.FeeTypePercentOfRent,
				Amount: 0.08, Cadence: domain.CadenceMonthly,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyChelsea,
				EffectiveDate: date(2026, 2, 1),
				Category:      "INSURANCE", FeeType: domain.FeeTypeFixed,
				Amount: 500, Cadence: domain.CadenceAnnually,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyChelsea,
				EffectiveDate: date(2026, 2, 1),
				Category:      "STRATA", FeeType: domain.FeeTypeFixed,
				Amount: 1585, Cadence: domain.CadenceAnnually,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyChelsea,
				EffectiveDate: date(2026, 2, 1),
				Category:      "COUNCIL", FeeType: domain.FeeTypeFixed,
				Amount: 2420, Cadence: domain.CadenceAnnually,
			},
			{
				ID: uuid.New(), PropertyID: DemoPropertyChelsea,
				EffectiveDate: date(2026, 2, 1),
				Category:      "WATER", FeeType: domain.FeeTypeFixed,
				Amount: 975, Cadence: domain.CadenceAnnually,
			},
		},
		Valuations: []domain.ValuationEvent{{
			ID: uuid.New(), PropertyID: DemoPropertyChelsea,
			Date: date(2026, 12, 31), Value: 749000, Source: domain.StringPtr("SELF"),
		}},
	}

	return []demoProperty{frenchville, tuartHill, chelsea}
}

func intPtr(v int) *int { return &v }
