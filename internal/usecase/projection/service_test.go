package projection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MusHusKat/investment-tracker/internal/domain"
	"github.com/MusHusKat/investment-tracker/internal/usecase/engine"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) List(ctx context.Context, onlyActive bool) ([]*domain.Property, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Property), args.Error(1)
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

// MockPortfolioRepository is a mock implementation of PortfolioRepository for testing
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) List(ctx context.Context) ([]*domain.Portfolio, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) Create(ctx context.Context, portfolio *domain.Portfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

// MockEventRepository is a mock implementation of EventRepository for testing
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) LoadEvents(ctx context.Context, propertyID uuid.UUID) (*domain.EventSet, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventSet), args.Error(1)
}

func (m *MockEventRepository) SavePurchase(ctx context.Context, event *domain.PurchaseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) AddLoanEvent(ctx context.Context, event *domain.LoanEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) AddTenancyEvent(ctx context.Context, event *domain.TenancyEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) AddRecurringCost(ctx context.Context, event *domain.RecurringCostEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) AddOneOff(ctx context.Context, event *domain.OneOffEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) AddValuation(ctx context.Context, event *domain.ValuationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) UpdateLoanEvent(ctx context.Context, id uuid.UUID, patch domain.LoanEventPatch) (*domain.LoanEvent, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanEvent), args.Error(1)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func bareAssetEvents(price float64, settlement time.Time) *domain.EventSet {
	return &domain.EventSet{
		Purchase: &domain.PurchaseEvent{
			SettlementDate: settlement,
			PurchasePrice:  price,
		},
	}
}

func TestRun_RejectsEmptySchedule(t *testing.T) {
	service := NewService(new(MockPropertyRepository), new(MockPortfolioRepository), new(MockEventRepository))

	_, err := service.Run(context.Background(), Request{PropertyIDs: []uuid.UUID{uuid.New()}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule must not be empty")
}

func TestRun_RejectsNonPositiveSegmentYears(t *testing.T) {
	service := NewService(new(MockPropertyRepository), new(MockPortfolioRepository), new(MockEventRepository))

	_, err := service.Run(context.Background(), Request{
		PropertyIDs: []uuid.UUID{uuid.New()},
		Schedule:    []engine.AppreciationSegment{{Years: -1, Rate: 0.05}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "years must be positive")
}

func TestRun_NoPropertiesSelected(t *testing.T) {
	service := NewService(new(MockPropertyRepository), new(MockPortfolioRepository), new(MockEventRepository))

	_, err := service.Run(context.Background(), Request{
		Schedule: []engine.AppreciationSegment{{Years: 10, Rate: 0.05}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no properties selected")
}

func TestRun_ForecastsAndAggregates(t *testing.T) {
	ctx := context.Background()
	mockPropertyRepo := new(MockPropertyRepository)
	mockPortfolioRepo := new(MockPortfolioRepository)
	mockEventRepo := new(MockEventRepository)
	service := NewService(mockPropertyRepo, mockPortfolioRepo, mockEventRepo)

	settlement := date(2025, time.January, 1)
	idA := uuid.New()
	idB := uuid.New()
	mockPropertyRepo.On("GetByID", ctx, idA).Return(
		&domain.Property{ID: idA, Name: "A", OwnershipPct: 100, IsActive: true}, nil)
	mockPropertyRepo.On("GetByID", ctx, idB).Return(
		&domain.Property{ID: idB, Name: "B", OwnershipPct: 100, IsActive: true}, nil)
	mockEventRepo.On("LoadEvents", ctx, idA).Return(bareAssetEvents(500000, settlement), nil)
	mockEventRepo.On("LoadEvents", ctx, idB).Return(bareAssetEvents(300000, settlement), nil)

	got, err := service.Run(ctx, Request{
		PropertyIDs: []uuid.UUID{idA, idB},
		Schedule:    []engine.AppreciationSegment{{Years: 30, Rate: 0.05}},
		Years:       []int{5},
		AsOf:        settlement,
	})

	require.NoError(t, err)
	require.Len(t, got.Properties, 2)
	assert.Equal(t, "A", got.Properties[0].Name)
	assert.Equal(t, "B", got.Properties[1].Name)

	require.Len(t, got.Aggregate, 1)
	wantValue := (500000 + 300000.0) * 1.05 * 1.05 * 1.05 * 1.05 * 1.05
	assert.InDelta(t, wantValue, got.Aggregate[0].ProjectedValue, 1e-6)
}

func TestRun_PortfolioMembersIncludedOnce(t *testing.T) {
	ctx := context.Background()
	mockPropertyRepo := new(MockPropertyRepository)
	mockPortfolioRepo := new(MockPortfolioRepository)
	mockEventRepo := new(MockEventRepository)
	service := NewService(mockPropertyRepo, mockPortfolioRepo, mockEventRepo)

	settlement := date(2025, time.January, 1)
	propertyID := uuid.New()
	portfolioID := uuid.New()
	mockPortfolioRepo.On("GetByID", ctx, portfolioID).Return(
		&domain.Portfolio{ID: portfolioID, PropertyIDs: []uuid.UUID{propertyID}}, nil)
	mockPropertyRepo.On("GetByID", ctx, propertyID).Return(
		&domain.Property{ID: propertyID, Name: "A", OwnershipPct: 100, IsActive: true}, nil).Once()
	mockEventRepo.On("LoadEvents", ctx, propertyID).Return(bareAssetEvents(500000, settlement), nil).Once()

	// The same property arrives via both the explicit list and the portfolio
	got, err := service.Run(ctx, Request{
		PropertyIDs:  []uuid.UUID{propertyID},
		PortfolioIDs: []uuid.UUID{portfolioID},
		Schedule:     []engine.AppreciationSegment{{Years: 10, Rate: 0.05}},
		Years:        []int{1},
		AsOf:         settlement,
	})

	require.NoError(t, err)
	assert.Len(t, got.Properties, 1)
	mockPropertyRepo.AssertExpectations(t)
	mockEventRepo.AssertExpectations(t)
}

func TestRun_InactivePropertiesSkipped(t *testing.T) {
	ctx := context.Background()
	mockPropertyRepo := new(MockPropertyRepository)
	mockEventRepo := new(MockEventRepository)
	service := NewService(mockPropertyRepo, new(MockPortfolioRepository), mockEventRepo)

	propertyID := uuid.New()
	mockPropertyRepo.On("GetByID", ctx, propertyID).Return(
		&domain.Property{ID: propertyID, Name: "Sold", OwnershipPct: 100, IsActive: false}, nil)

	got, err := service.Run(ctx, Request{
		PropertyIDs: []uuid.UUID{propertyID},
		Schedule:    []engine.AppreciationSegment{{Years: 10, Rate: 0.05}},
		Years:       []int{1},
		AsOf:        date(2025, time.June, 1),
	})

	require.NoError(t, err)
	assert.Empty(t, got.Properties)
	assert.Empty(t, got.Aggregate)
	mockEventRepo.AssertNotCalled(t, "LoadEvents")
}

func TestSanitizeYears(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 5, 7, 10, 15, 20}, sanitizeYears(nil))
	assert.Equal(t, []int{1, 2, 3, 5, 7, 10, 15, 20}, sanitizeYears([]int{0, -3, 45}))
	assert.Equal(t, []int{5, 30}, sanitizeYears([]int{5, 30, 31}))
}
