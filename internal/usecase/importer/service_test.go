package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MusHusKat/investment-tracker/internal/domain"
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

// MockSnapshotRepository is a mock implementation of SnapshotRepository for testing
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) GetByKey(ctx context.Context, key domain.SnapshotKey) (*domain.YearlySnapshot, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.YearlySnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) ListByYear(ctx context.Context, year int, propertyIDs []uuid.UUID) (map[uuid.UUID]*domain.YearlySnapshot, error) {
	args := m.Called(ctx, year, propertyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*domain.YearlySnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*domain.YearlySnapshot, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.YearlySnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Upsert(ctx context.Context, snapshot *domain.YearlySnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func TestImport_MatchesPropertiesByNameCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	mockPropertyRepo := new(MockPropertyRepository)
	mockSnapshotRepo := new(MockSnapshotRepository)
	service := NewService(mockPropertyRepo, mockSnapshotRepo)

	propertyID := uuid.New()
	mockPropertyRepo.On("List", ctx, false).Return(
		[]*domain.Property{{ID: propertyID, Name: "7 Harbour St", OwnershipPct: 100}}, nil)

	csv := "property_name,year,rent\n7 HARBOUR ST,2025,22052\nNowhere Rd,2025,100\n"

	mockSnapshotRepo.On("GetByKey", ctx, domain.SnapshotKey{PropertyID: propertyID, Year: 2025}).Return(nil, nil)
	mockSnapshotRepo.On("Upsert", ctx, mock.MatchedBy(func(snap *domain.YearlySnapshot) bool {
		return snap.PropertyID == propertyID && snap.Year == 2025 &&
			snap.RentIncome != nil && *snap.RentIncome == 22052 &&
			snap.ID != uuid.Nil
	})).Return(nil)

	got, err := service.Import(ctx, strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 1, got.Imported)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, 3, got.Errors[0].Row)
	assert.Contains(t, got.Errors[0].Message, "Unknown property: Nowhere Rd")
	mockSnapshotRepo.AssertExpectations(t)
}

func TestImport_ReplacesExistingPropertyYear(t *testing.T) {
	ctx := context.Background()
	mockPropertyRepo := new(MockPropertyRepository)
	mockSnapshotRepo := new(MockSnapshotRepository)
	service := NewService(mockPropertyRepo, mockSnapshotRepo)

	propertyID := uuid.New()
	existingID := uuid.New()
	mockPropertyRepo.On("List", ctx, false).Return(
		[]*domain.Property{{ID: propertyID, Name: "7 Harbour St", OwnershipPct: 100}}, nil)
	mockSnapshotRepo.On("GetByKey", ctx, domain.SnapshotKey{PropertyID: propertyID, Year: 2025}).Return(
		&domain.YearlySnapshot{ID: existingID, PropertyID: propertyID, Year: 2025}, nil)
	mockSnapshotRepo.On("Upsert", ctx, mock.MatchedBy(func(snap *domain.YearlySnapshot) bool {
		return snap.ID == existingID
	})).Return(nil)

	got, err := service.Import(ctx, strings.NewReader("property_name,year,rent\n7 Harbour St,2025,23000\n"))

	require.NoError(t, err)
	assert.Equal(t, 1, got.Imported)
	assert.Empty(t, got.Errors)
	mockSnapshotRepo.AssertExpectations(t)
}

func TestExport_OrdersByPropertyNameThenYear(t *testing.T) {
	ctx := context.Background()
	mockPropertyRepo := new(MockPropertyRepository)
	mockSnapshotRepo := new(MockSnapshotRepository)
	service := NewService(mockPropertyRepo, mockSnapshotRepo)

	idA := uuid.New()
	idB := uuid.New()
	// Listed out of order; export must sort by name
	mockPropertyRepo.On("List", ctx, false).Return([]*domain.Property{
		{ID: idB, Name: "Beta Ave"},
		{ID: idA, Name: "Alpha St"},
	}, nil)
	mockSnapshotRepo.On("ListByProperty", ctx, idA).Return([]*domain.YearlySnapshot{
		{PropertyID: idA, Year: 2024, RentIncome: fptrImp(20000)},
		{PropertyID: idA, Year: 2025, RentIncome: fptrImp(22052)},
	}, nil)
	mockSnapshotRepo.On("ListByProperty", ctx, idB).Return([]*domain.YearlySnapshot{
		{PropertyID: idB, Year: 2025, RentIncome: fptrImp(18000)},
	}, nil)

	var sb strings.Builder
	err := service.Export(ctx, &sb)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "Alpha St,2024"))
	assert.True(t, strings.HasPrefix(lines[2], "Alpha St,2025"))
	assert.True(t, strings.HasPrefix(lines[3], "Beta Ave,2025"))
}
