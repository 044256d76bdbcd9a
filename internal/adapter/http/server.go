package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/config"
	"github.com/MusHusKat/investment-tracker/internal/domain"
	"github.com/MusHusKat/investment-tracker/internal/usecase/engine"
	"github.com/MusHusKat/investment-tracker/internal/usecase/importer"
	"github.com/MusHusKat/investment-tracker/internal/usecase/kpi"
	"github.com/MusHusKat/investment-tracker/internal/usecase/projection"
	"github.com/MusHusKat/investment-tracker/internal/usecase/snapshot"
)

// KPIService is the slice of the kpi usecase the HTTP surface needs.
type KPIService interface {
	GetSnapshot(ctx context.Context, propertyID uuid.UUID, asOf time.Time) (*kpi.PropertySnapshot, error)
	GetPeriod(ctx context.Context, propertyID uuid.UUID, from, to time.Time) (*engine.PeriodKPIs, error)
	RecordPurchase(ctx context.Context, event *domain.PurchaseEvent) error
	RecordLoanChange(ctx context.Context, event *domain.LoanEvent) error
	RecordTenancyEvent(ctx context.Context, event *domain.TenancyEvent) error
	RecordRecurringCost(ctx context.Context, event *domain.RecurringCostEvent) error
	RecordOneOff(ctx context.Context, event *domain.OneOffEvent) error
	RecordValuation(ctx context.Context, event *domain.ValuationEvent) error
	AmendLoanEvent(ctx context.Context, id uuid.UUID, patch domain.LoanEventPatch) (*domain.LoanEvent, error)
}

// ProjectionService runs multi-year forecasts.
type ProjectionService interface {
	Run(ctx context.Context, req projection.Request) (*projection.Result, error)
}

// SnapshotService serves the legacy yearly reporting views.
type SnapshotService interface {
	PropertyYear(ctx context.Context, propertyID uuid.UUID, year int) (*snapshot.PropertyYearView, error)
	PortfolioYear(ctx context.Context, year int) (*snapshot.AggregatedKPIs, error)
	Trend(ctx context.Context, years []int) ([]snapshot.TrendPoint, error)
	Save(ctx context.Context, snap *domain.YearlySnapshot) error
	MaterializeYear(ctx context.Context, year int) (int, error)
}

// ImportService moves yearly snapshots in and out as CSV.
type ImportService interface {
	Import(ctx context.Context, r io.Reader) (*importer.ImportResult, error)
	Export(ctx context.Context, w io.Writer) error
}

// Server wires the usecase services to the gin router
type Server struct {
	PropertyRepo  domain.PropertyRepository
	PortfolioRepo domain.PortfolioRepository

	KPIs        KPIService
	Projections ProjectionService
	Snapshots   SnapshotService
	Importer    ImportService
}

// NewServer creates a new HTTP server instance
func NewServer(
	propertyRepo domain.PropertyRepository,
	portfolioRepo domain.PortfolioRepository,
	kpiService KPIService,
	projectionService ProjectionService,
	snapshotService SnapshotService,
	importService ImportService,
) *Server {
	return &Server{
		PropertyRepo:  propertyRepo,
		PortfolioRepo: portfolioRepo,
		KPIs:          kpiService,
		Projections:   projectionService,
		Snapshots:     snapshotService,
		Importer:      importService,
	}
}

// Router builds the gin engine with CORS, auth and all routes registered.
func (s *Server) Router(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(AuthMiddleware(cfg.Auth.APIToken))

	api.GET("/properties", s.listProperties)
	api.POST("/properties", s.createProperty)
	api.GET("/portfolios", s.listPortfolios)

	api.GET("/properties/:id/kpis", s.getKPISnapshot)
	api.GET("/properties/:id/kpis/period", s.getPeriodKPIs)

	api.POST("/properties/:id/events/purchase", s.recordPurchase)
	api.POST("/properties/:id/events/loan", s.recordLoanChange)
	api.POST("/properties/:id/events/tenancy", s.recordTenancyEvent)
	api.POST("/properties/:id/events/recurring-cost", s.recordRecurringCost)
	api.POST("/properties/:id/events/one-off", s.recordOneOff)
	api.POST("/properties/:id/events/valuation", s.recordValuation)
	api.PATCH("/events/loan/:id", s.amendLoanEvent)

	api.POST("/projections", s.runProjection)

	api.GET("/snapshots/:year/properties/:id", s.getPropertyYear)
	api.GET("/snapshots/:year/portfolio", s.getPortfolioYear)
	api.GET("/snapshots/trend", s.getTrend)
	api.PUT("/snapshots", s.saveSnapshot)
	api.POST("/snapshots/:year/materialize", s.materializeYear)

	api.POST("/import/csv", s.importCSV)
	api.GET("/export/csv", s.exportCSV)

	return r
}

// fail maps usecase errors onto HTTP statuses by message shape, the same
// way errors flow out of the services.
func fail(c *gin.Context, err error) {
	msg := err.Error()

	switch {
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "no snapshot recorded"):
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
	case strings.Contains(msg, "must"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "unknown"),
		strings.Contains(msg, "requires"),
		strings.Contains(msg, "needs"),
		strings.Contains(msg, "out of range"),
		strings.Contains(msg, "no properties selected"):
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
