package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MusHusKat/investment-tracker/internal/config"
	"github.com/MusHusKat/investment-tracker/internal/domain"
	"github.com/MusHusKat/investment-tracker/internal/usecase/engine"
	"github.com/MusHusKat/investment-tracker/internal/usecase/importer"
	"github.com/MusHusKat/investment-tracker/internal/usecase/kpi"
	"github.com/MusHusKat/investment-tracker/internal/usecase/projection"
	"github.com/MusHusKat/investment-tracker/internal/usecase/snapshot"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockPropertyRepository is a mock implementation of domain.PropertyRepository
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

// MockPortfolioRepository is a mock implementation of domain.PortfolioRepository
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

// MockKPIService is a mock implementation of KPIService
type MockKPIService struct {
	mock.Mock
}

func (m *MockKPIService) GetSnapshot(ctx context.Context, propertyID uuid.UUID, asOf time.Time) (*kpi.PropertySnapshot, error) {
	args := m.Called(ctx, propertyID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kpi.PropertySnapshot), args.Error(1)
}

func (m *MockKPIService) GetPeriod(ctx context.Context, propertyID uuid.UUID, from, to time.Time) (*engine.PeriodKPIs, error) {
	args := m.Called(ctx, propertyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.PeriodKPIs), args.Error(1)
}

func (m *MockKPIService) RecordPurchase(ctx context.Context, event *domain.PurchaseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockKPIService) RecordLoanChange(ctx context.Context, event *domain.LoanEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockKPIService) RecordTenancyEvent(ctx context.Context, event *domain.TenancyEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockKPIService) RecordRecurringCost(ctx context.Context, event *domain.RecurringCostEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockKPIService) RecordOneOff(ctx context.Context, event *domain.OneOffEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockKPIService) RecordValuation(ctx context.Context, event *domain.ValuationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockKPIService) AmendLoanEvent(ctx context.Context, id uuid.UUID, patch domain.LoanEventPatch) (*domain.LoanEvent, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanEvent), args.Error(1)
}

// MockProjectionService is a mock implementation of ProjectionService
type MockProjectionService struct {
	mock.Mock
}

func (m *MockProjectionService) Run(ctx context.Context, req projection.Request) (*projection.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projection.Result), args.Error(1)
}

// MockSnapshotService is a mock implementation of SnapshotService
type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) PropertyYear(ctx context.Context, propertyID uuid.UUID, year int) (*snapshot.PropertyYearView, error) {
	args := m.Called(ctx, propertyID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.PropertyYearView), args.Error(1)
}

func (m *MockSnapshotService) PortfolioYear(ctx context.Context, year int) (*snapshot.AggregatedKPIs, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.AggregatedKPIs), args.Error(1)
}

func (m *MockSnapshotService) Trend(ctx context.Context, years []int) ([]snapshot.TrendPoint, error) {
	args := m.Called(ctx, years)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]snapshot.TrendPoint), args.Error(1)
}

func (m *MockSnapshotService) Save(ctx context.Context, snap *domain.YearlySnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockSnapshotService) MaterializeYear(ctx context.Context, year int) (int, error) {
	args := m.Called(ctx, year)
	return args.Int(0), args.Error(1)
}

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Import(ctx context.Context, r io.Reader) (*importer.ImportResult, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importer.ImportResult), args.Error(1)
}

func (m *MockImportService) Export(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

type testServer struct {
	server      *Server
	router      *gin.Engine
	props       *MockPropertyRepository
	portfolios  *MockPortfolioRepository
	kpis        *MockKPIService
	projections *MockProjectionService
	snapshots   *MockSnapshotService
	importer    *MockImportService
}

func newTestServer() *testServer {
	ts := &testServer{
		props:       new(MockPropertyRepository),
		portfolios:  new(MockPortfolioRepository),
		kpis:        new(MockKPIService),
		projections: new(MockProjectionService),
		snapshots:   new(MockSnapshotService),
		importer:    new(MockImportService),
	}
	ts.server = NewServer(ts.props, ts.portfolios, ts.kpis, ts.projections, ts.snapshots, ts.importer)
	ts.router = ts.server.Router(config.DefaultConfig())
	return ts
}

func (ts *testServer) do(method, path string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer dev-token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	ts := newTestServer()

	t.Run("health is open", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestListProperties(t *testing.T) {
	ts := newTestServer()
	ts.props.On("List", mock.Anything, true).Return([]*domain.Property{
		{ID: uuid.New(), Name: "12 Ocean St", OwnershipPct: 100, IsActive: true},
	}, nil)

	w := ts.do(http.MethodGet, "/api/v1/properties?active=true", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "12 Ocean St")
	ts.props.AssertExpectations(t)
}

func TestCreateProperty_DefaultsOwnershipAndActive(t *testing.T) {
	ts := newTestServer()
	ts.props.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Property) bool {
		return p.Name == "12 Ocean St" && p.OwnershipPct == 100 && p.IsActive && p.ID != uuid.Nil
	})).Return(nil)

	w := ts.do(http.MethodPost, "/api/v1/properties", `{"name":"12 Ocean St"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	ts.props.AssertExpectations(t)
}

func TestCreateProperty_RequiresName(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodPost, "/api/v1/properties", `{"ownership_pct": 50}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	ts.props.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetKPISnapshot_ParsesAsOf(t *testing.T) {
	ts := newTestServer()
	propertyID := uuid.New()
	asOf := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	ts.kpis.On("GetSnapshot", mock.Anything, propertyID, asOf).
		Return(&kpi.PropertySnapshot{KPIs: engine.KPISnapshot{GrossRent: 1000}}, nil)

	w := ts.do(http.MethodGet, "/api/v1/properties/"+propertyID.String()+"/kpis?as_of=2025-12-31", "")

	assert.Equal(t, http.StatusOK, w.Code)
	ts.kpis.AssertExpectations(t)
}

func TestGetKPISnapshot_NotFound(t *testing.T) {
	ts := newTestServer()
	propertyID := uuid.New()
	ts.kpis.On("GetSnapshot", mock.Anything, propertyID, mock.Anything).
		Return(nil, errors.New("failed to load property: property not found"))

	w := ts.do(http.MethodGet, "/api/v1/properties/"+propertyID.String()+"/kpis", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPeriodKPIs_RejectsBadDates(t *testing.T) {
	ts := newTestServer()
	propertyID := uuid.New()

	w := ts.do(http.MethodGet, "/api/v1/properties/"+propertyID.String()+"/kpis/period?from=whenever&to=2025-12-31", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	ts.kpis.AssertNotCalled(t, "GetPeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordTenancyEvent(t *testing.T) {
	ts := newTestServer()
	propertyID := uuid.New()
	ts.kpis.On("RecordTenancyEvent", mock.Anything, mock.MatchedBy(func(e *domain.TenancyEvent) bool {
		return e.PropertyID == propertyID &&
			e.Type == domain.TenancyStart &&
			e.WeeklyRent != nil && *e.WeeklyRent == 424 &&
			e.EffectiveDate.Equal(time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC))
	})).Return(nil)

	w := ts.do(http.MethodPost, "/api/v1/properties/"+propertyID.String()+"/events/tenancy",
		`{"type":"START","effective_date":"2024-11-15","weekly_rent":424}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	ts.kpis.AssertExpectations(t)
}

func TestRecordTenancyEvent_ValidationErrorIs400(t *testing.T) {
	ts := newTestServer()
	propertyID := uuid.New()
	ts.kpis.On("RecordTenancyEvent", mock.Anything, mock.Anything).
		Return(errors.New("START event requires a weekly rent"))

	w := ts.do(http.MethodPost, "/api/v1/properties/"+propertyID.String()+"/events/tenancy",
		`{"type":"START","effective_date":"2024-11-15"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAmendLoanEvent_PassesThreeStatePatch(t *testing.T) {
	ts := newTestServer()
	eventID := uuid.New()
	ts.kpis.On("AmendLoanEvent", mock.Anything, eventID, mock.MatchedBy(func(p domain.LoanEventPatch) bool {
		return p.AnnualRate == domain.Set(0.0589) &&
			p.ManualLoanBalance == domain.Clear[float64]() &&
			!p.RepaymentAmount.Present
	})).Return(&domain.LoanEvent{ID: eventID, AnnualRate: 0.0589}, nil)

	w := ts.do(http.MethodPatch, "/api/v1/events/loan/"+eventID.String(),
		`{"annual_rate":0.0589,"manual_loan_balance":null}`)

	assert.Equal(t, http.StatusOK, w.Code)
	ts.kpis.AssertExpectations(t)
}

func TestRunProjection(t *testing.T) {
	ts := newTestServer()
	propertyID := uuid.New()
	ts.projections.On("Run", mock.Anything, mock.MatchedBy(func(req projection.Request) bool {
		return len(req.PropertyIDs) == 1 && req.PropertyIDs[0] == propertyID &&
			len(req.Schedule) == 2 && req.Schedule[0].Rate == 0.07 &&
			len(req.Years) == 2
	})).Return(&projection.Result{}, nil)

	w := ts.do(http.MethodPost, "/api/v1/projections",
		`{"property_ids":["`+propertyID.String()+`"],"schedule":[{"years":2,"rate":0.07},{"years":10,"rate":0.05}],"years":[5,10]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	ts.projections.AssertExpectations(t)
}

func TestRunProjection_EmptyScheduleIs400(t *testing.T) {
	ts := newTestServer()
	ts.projections.On("Run", mock.Anything, mock.Anything).
		Return(nil, errors.New("appreciation schedule must not be empty"))

	w := ts.do(http.MethodPost, "/api/v1/projections", `{"schedule":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveSnapshot(t *testing.T) {
	ts := newTestServer()
	propertyID := uuid.New()
	ts.snapshots.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.YearlySnapshot) bool {
		return s.PropertyID == propertyID && s.Year == 2025 &&
			s.RentIncome != nil && *s.RentIncome == 22052 &&
			s.PrincipalPaid == nil
	})).Return(nil)

	w := ts.do(http.MethodPut, "/api/v1/snapshots",
		`{"property_id":"`+propertyID.String()+`","year":2025,"rent_income":22052}`)

	assert.Equal(t, http.StatusOK, w.Code)
	ts.snapshots.AssertExpectations(t)
}

func TestMaterializeYear(t *testing.T) {
	ts := newTestServer()
	ts.snapshots.On("MaterializeYear", mock.Anything, 2025).Return(3, nil)

	w := ts.do(http.MethodPost, "/api/v1/snapshots/2025/materialize", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["materialized"])
}

func TestGetTrend_ParsesYears(t *testing.T) {
	ts := newTestServer()
	ts.snapshots.On("Trend", mock.Anything, []int{2023, 2024, 2025}).
		Return([]snapshot.TrendPoint{}, nil)

	w := ts.do(http.MethodGet, "/api/v1/snapshots/trend?years=2023,2024,2025", "")

	assert.Equal(t, http.StatusOK, w.Code)
	ts.snapshots.AssertExpectations(t)
}

func TestGetTrend_RequiresYears(t *testing.T) {
	ts := newTestServer()

	w := ts.do(http.MethodGet, "/api/v1/snapshots/trend", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportCSV(t *testing.T) {
	ts := newTestServer()
	ts.importer.On("Import", mock.Anything, mock.Anything).
		Return(&importer.ImportResult{Imported: 2}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/csv",
		bytes.NewBufferString("property_name,year\n"))
	req.Header.Set("Authorization", "Bearer dev-token")
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Imported":2`)
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer()
	ts.importer.On("Export", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		w := args.Get(1).(io.Writer)
		_, _ = w.Write([]byte("property_name,year\n"))
	}).Return(nil)

	w := ts.do(http.MethodGet, "/api/v1/export/csv", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "property_name")
}
