package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
	"github.com/MusHusKat/investment-tracker/internal/usecase/engine"
	"github.com/MusHusKat/investment-tracker/internal/usecase/projection"
)

const dateLayout = "2006-01-02"

// parseDate accepts plain dates and full RFC3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return uuid.Nil, false
	}
	return id, true
}

func pathYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return 0, false
	}
	return year, true
}

func (s *Server) listProperties(c *gin.Context) {
	onlyActive := c.Query("active") == "true"

	properties, err := s.PropertyRepo.List(c.Request.Context(), onlyActive)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (s *Server) listPortfolios(c *gin.Context) {
	portfolios, err := s.PortfolioRepo.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, portfolios)
}

type createPropertyRequest struct {
	Name             string   `json:"name" binding:"required"`
	Address          *string  `json:"address"`
	Tags             []string `json:"tags"`
	OwnershipPct     *float64 `json:"ownership_pct"`
	AppreciationRate *float64 `json:"appreciation_rate"`
	IsActive         *bool    `json:"is_active"`
}

func (s *Server) createProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	property := &domain.Property{
		ID:               uuid.New(),
		Name:             req.Name,
		Address:          req.Address,
		Tags:             req.Tags,
		OwnershipPct:     100,
		AppreciationRate: req.AppreciationRate,
		IsActive:         true,
	}
	if req.OwnershipPct != nil {
		property.OwnershipPct = *req.OwnershipPct
	}
	if req.IsActive != nil {
		property.IsActive = *req.IsActive
	}

	if err := s.PropertyRepo.Create(c.Request.Context(), property); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (s *Server) getKPISnapshot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		asOf = t
	}

	snap, err := s.KPIs.GetSnapshot(c.Request.Context(), id, asOf)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) getPeriodKPIs(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}

	period, err := s.KPIs.GetPeriod(c.Request.Context(), id, from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

type purchaseRequest struct {
	SettlementDate string   `json:"settlement_date" binding:"required"`
	PurchasePrice  float64  `json:"purchase_price"`
	Deposit        *float64 `json:"deposit"`
	StampDuty      *float64 `json:"stamp_duty"`
	LegalFees      *float64 `json:"legal_fees"`
	BuyersAgentFee *float64 `json:"buyers_agent_fee"`
	LoanAmount     *float64 `json:"loan_amount"`
}

func (s *Server) recordPurchase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settlement, err := parseDate(req.SettlementDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &domain.PurchaseEvent{
		PropertyID:     id,
		SettlementDate: settlement,
		PurchasePrice:  req.PurchasePrice,
		Deposit:        req.Deposit,
		StampDuty:      req.StampDuty,
		LegalFees:      req.LegalFees,
		BuyersAgentFee: req.BuyersAgentFee,
		LoanAmount:     req.LoanAmount,
	}
	if err := s.KPIs.RecordPurchase(c.Request.Context(), event); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

type loanRequest struct {
	EffectiveDate     string   `json:"effective_date" binding:"required"`
	LoanType          string   `json:"loan_type" binding:"required"`
	RateType          string   `json:"rate_type"`
	AnnualRate        float64  `json:"annual_rate"`
	RepaymentAmount   float64  `json:"repayment_amount"`
	RepaymentCadence  string   `json:"repayment_cadence"`
	FixedExpiry       *string  `json:"fixed_expiry"`
	OffsetBalance     *float64 `json:"offset_balance"`
	ManualLoanBalance *float64 `json:"manual_loan_balance"`
	Lender            *string  `json:"lender"`
}

func (s *Server) recordLoanChange(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req loanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	effective, err := parseDate(req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var fixedExpiry *time.Time
	if req.FixedExpiry != nil {
		t, err := parseDate(*req.FixedExpiry)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fixedExpiry = &t
	}

	event := &domain.LoanEvent{
		PropertyID:        id,
		EffectiveDate:     effective,
		LoanType:          domain.LoanType(req.LoanType),
		RateType:          domain.RateType(req.RateType),
		AnnualRate:        req.AnnualRate,
		RepaymentAmount:   req.RepaymentAmount,
		RepaymentCadence:  domain.Cadence(req.RepaymentCadence),
		FixedExpiry:       fixedExpiry,
		OffsetBalance:     req.OffsetBalance,
		ManualLoanBalance: req.ManualLoanBalance,
		Lender:            req.Lender,
	}
	if err := s.KPIs.RecordLoanChange(c.Request.Context(), event); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

type tenancyRequest struct {
	Type            string   `json:"type" binding:"required"`
	EffectiveDate   string   `json:"effective_date" binding:"required"`
	WeeklyRent      *float64 `json:"weekly_rent"`
	LeaseTermMonths *int     `json:"lease_term_months"`
}

func (s *Server) recordTenancyEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req tenancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	effective, err := parseDate(req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &domain.TenancyEvent{
		PropertyID:      id,
		Type:            domain.TenancyEventType(req.Type),
		EffectiveDate:   effective,
		WeeklyRent:      req.WeeklyRent,
		LeaseTermMonths: req.LeaseTermMonths,
	}
	if err := s.KPIs.RecordTenancyEvent(c.Request.Context(), event); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

type recurringCostRequest struct {
	EffectiveDate string  `json:"effective_date" binding:"required"`
	EndDate       *string `json:"end_date"`
	Category      string  `json:"category" binding:"required"`
	FeeType       string  `json:"fee_type" binding:"required"`
	Amount        float64 `json:"amount"`
	Cadence       string  `json:"cadence" binding:"required"`
}

func (s *Server) recordRecurringCost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req recurringCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	effective, err := parseDate(req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var endDate *time.Time
	if req.EndDate != nil {
		t, err := parseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		endDate = &t
	}

	event := &domain.RecurringCostEvent{
		PropertyID:    id,
		EffectiveDate: effective,
		EndDate:       endDate,
		Category:      req.Category,
		FeeType:       domain.FeeType(req.FeeType),
		Amount:        req.Amount,
		Cadence:       domain.Cadence(req.Cadence),
	}
	if err := s.KPIs.RecordRecurringCost(c.Request.Context(), event); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

type oneOffRequest struct {
	Date     string  `json:"date" binding:"required"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

func (s *Server) recordOneOff(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req oneOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &domain.OneOffEvent{
		PropertyID: id,
		Date:       date,
		Amount:     req.Amount,
		Category:   req.Category,
	}
	if err := s.KPIs.RecordOneOff(c.Request.Context(), event); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

type valuationRequest struct {
	Date   string  `json:"date" binding:"required"`
	Value  float64 `json:"value"`
	Source *string `json:"source"`
}

func (s *Server) recordValuation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req valuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &domain.ValuationEvent{
		PropertyID: id,
		Date:       date,
		Value:      req.Value,
		Source:     req.Source,
	}
	if err := s.KPIs.RecordValuation(c.Request.Context(), event); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (s *Server) amendLoanEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	patch, err := decodeLoanPatch(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := s.KPIs.AmendLoanEvent(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type projectionRequest struct {
	PropertyIDs  []string `json:"property_ids"`
	PortfolioIDs []string `json:"portfolio_ids"`
	Schedule     []struct {
		Years float64 `json:"years"`
		Rate  float64 `json:"rate"`
	} `json:"schedule" binding:"required"`
	Years []int   `json:"years"`
	AsOf  *string `json:"as_of"`
}

func (s *Server) runProjection(c *gin.Context) {
	var req projectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run := projection.Request{Years: req.Years}
	for _, raw := range req.PropertyIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid property id %q", raw)})
			return
		}
		run.PropertyIDs = append(run.PropertyIDs, id)
	}
	for _, raw := range req.PortfolioIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid portfolio id %q", raw)})
			return
		}
		run.PortfolioIDs = append(run.PortfolioIDs, id)
	}
	for _, seg := range req.Schedule {
		run.Schedule = append(run.Schedule, engine.AppreciationSegment{Years: seg.Years, Rate: seg.Rate})
	}
	if req.AsOf != nil {
		t, err := parseDate(*req.AsOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		run.AsOf = t
	}

	result, err := s.Projections.Run(c.Request.Context(), run)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getPropertyYear(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := s.Snapshots.PropertyYear(c.Request.Context(), id, year)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) getPortfolioYear(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}

	agg, err := s.Snapshots.PortfolioYear(c.Request.Context(), year)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (s *Server) getTrend(c *gin.Context) {
	var years []int
	for _, raw := range strings.Split(c.Query("years"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid year %q", raw)})
			return
		}
		years = append(years, year)
	}
	if len(years) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "years query parameter is required"})
		return
	}

	trend, err := s.Snapshots.Trend(c.Request.Context(), years)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

type snapshotRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
	Year       int    `json:"year" binding:"required"`

	RentIncome  *float64 `json:"rent_income"`
	OtherIncome *float64 `json:"other_income"`

	Maintenance      *float64 `json:"maintenance"`
	Insurance        *float64 `json:"insurance"`
	CouncilRates     *float64 `json:"council_rates"`
	StrataFees       *float64 `json:"strata_fees"`
	PropertyMgmtFees *float64 `json:"property_mgmt_fees"`
	Utilities        *float64 `json:"utilities"`
	OtherExpenses    *float64 `json:"other_expenses"`

	InterestPaid  *float64 `json:"interest_paid"`
	PrincipalPaid *float64 `json:"principal_paid"`
	Capex         *float64 `json:"capex"`
	LoanBalance   *float64 `json:"loan_balance"`

	Notes *string `json:"notes"`
}

func (s *Server) saveSnapshot(c *gin.Context) {
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	snap := &domain.YearlySnapshot{
		PropertyID:       propertyID,
		Year:             req.Year,
		RentIncome:       req.RentIncome,
		OtherIncome:      req.OtherIncome,
		Maintenance:      req.Maintenance,
		Insurance:        req.Insurance,
		CouncilRates:     req.CouncilRates,
		StrataFees:       req.StrataFees,
		PropertyMgmtFees: req.PropertyMgmtFees,
		Utilities:        req.Utilities,
		OtherExpenses:    req.OtherExpenses,
		InterestPaid:     req.InterestPaid,
		PrincipalPaid:    req.PrincipalPaid,
		Capex:            req.Capex,
		LoanBalance:      req.LoanBalance,
		Notes:            req.Notes,
	}
	if err := s.Snapshots.Save(c.Request.Context(), snap); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) materializeYear(c *gin.Context) {
	year, ok := pathYear(c)
	if !ok {
		return
	}

	count, err := s.Snapshots.MaterializeYear(c.Request.Context(), year)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "materialized": count})
}

func (s *Server) importCSV(c *gin.Context) {
	result, err := s.Importer.Import(c.Request.Context(), c.Request.Body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) exportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="snapshots.csv"`)
	c.Status(http.StatusOK)
	if err := s.Importer.Export(c.Request.Context(), c.Writer); err != nil {
		// Headers are already out; all we can do is log via gin's recovery
		_ = c.Error(err)
	}
}
