package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// csvHeaders is the canonical import column set. Export adds computed
// columns after these.
var csvHeaders = []string{
	"property_name",
	"year",
	"rent",
	"other_income",
	"repairs",
	"insurance",
	"rates",
	"strata",
	"pm_fees",
	"utilities",
	"other_expenses",
	"interest_paid",
	"principal_paid",
	"capex",
	"notes",
}

// Row is one parsed import line. Line is its 1-indexed file position, kept
// so later stages can report errors against the original file.
type Row struct {
	Line          int
	PropertyName  string
	Year          int
	Rent          float64
	OtherIncome   float64
	Repairs       float64
	Insurance     float64
	Rates         float64
	Strata        float64
	PMFees        float64
	Utilities     float64
	OtherExpenses float64
	InterestPaid  float64
	PrincipalPaid float64
	Capex         float64
	Notes         string
}

// RowError reports one rejected line by its 1-indexed file position.
type RowError struct {
	Row     int
	Message string
}

// ParseResult carries the accepted rows and the per-row rejections.
type ParseResult struct {
	Rows   []Row
	Errors []RowError
}

// normalizeHeader folds "Interest Paid" and "interest_paid" into one name.
func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// toNum parses a currency-ish cell, stripping $ signs, commas and spaces.
// Anything unparseable counts as zero, matching spreadsheet-tool exports
// that leave blanks in money columns.
func toNum(val string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ':
			return -1
		}
		return r
	}, val)
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return n
}

// Parse reads the snapshot CSV. Malformed rows are collected as RowErrors
// rather than aborting the whole file; only an unreadable stream fails.
func Parse(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &ParseResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}

	cell := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	result := &ParseResult{}
	rowNum := 1 // header line
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}

		name := strings.TrimSpace(cell(record, "property_name"))
		if name == "" {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "Missing property_name"})
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(cell(record, "year")))
		if err != nil || year < 2000 || year > 2100 {
			result.Errors = append(result.Errors, RowError{
				Row:     rowNum,
				Message: fmt.Sprintf("Invalid year: %s", cell(record, "year")),
			})
			continue
		}

		result.Rows = append(result.Rows, Row{
			Line:          rowNum,
			PropertyName:  name,
			Year:          year,
			Rent:          toNum(cell(record, "rent")),
			OtherIncome:   toNum(cell(record, "other_income")),
			Repairs:       toNum(cell(record, "repairs")),
			Insurance:     toNum(cell(record, "insurance")),
			Rates:         toNum(cell(record, "rates")),
			Strata:        toNum(cell(record, "strata")),
			PMFees:        toNum(cell(record, "pm_fees")),
			Utilities:     toNum(cell(record, "utilities")),
			OtherExpenses: toNum(cell(record, "other_expenses")),
			InterestPaid:  toNum(cell(record, "interest_paid")),
			PrincipalPaid: toNum(cell(record, "principal_paid")),
			Capex:         toNum(cell(record, "capex")),
			Notes:         strings.TrimSpace(cell(record, "notes")),
		})
	}

	return result, nil
}

// Snapshot converts the row into a snapshot record for the given property.
func (r Row) Snapshot(propertyID uuid.UUID) *domain.YearlySnapshot {
	f := func(v float64) *float64 { return &v }
	snap := &domain.YearlySnapshot{
		PropertyID:       propertyID,
		Year:             r.Year,
		RentIncome:       f(r.Rent),
		OtherIncome:      f(r.OtherIncome),
		Maintenance:      f(r.Repairs),
		Insurance:        f(r.Insurance),
		CouncilRates:     f(r.Rates),
		StrataFees:       f(r.Strata),
		PropertyMgmtFees: f(r.PMFees),
		Utilities:        f(r.Utilities),
		OtherExpenses:    f(r.OtherExpenses),
		InterestPaid:     f(r.InterestPaid),
		PrincipalPaid:    f(r.PrincipalPaid),
		Capex:            f(r.Capex),
	}
	if r.Notes != "" {
		snap.Notes = &r.Notes
	}
	return snap
}

var exportHeaders = append(append([]string{}, csvHeaders...),
	"gross_income",
	"total_opex",
	"noi",
	"cashflow_pre_principal",
	"cashflow_post_principal",
)

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV emits snapshots in the canonical format plus computed columns.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		grossIncome := row.Rent + row.OtherIncome
		totalOpex := row.Repairs + row.Insurance + row.Rates + row.Strata +
			row.PMFees + row.Utilities + row.OtherExpenses
		noi := grossIncome - totalOpex
		cashflowPre := noi - row.InterestPaid
		cashflowPost := cashflowPre - row.PrincipalPaid

		record := []string{
			row.PropertyName,
			strconv.Itoa(row.Year),
			formatNum(row.Rent),
			formatNum(row.OtherIncome),
			formatNum(row.Repairs),
			formatNum(row.Insurance),
			formatNum(row.Rates),
			formatNum(row.Strata),
			formatNum(row.PMFees),
			formatNum(row.Utilities),
			formatNum(row.OtherExpenses),
			formatNum(row.InterestPaid),
			formatNum(row.PrincipalPaid),
			formatNum(row.Capex),
			row.Notes,
			formatNum(grossIncome),
			formatNum(totalOpex),
			formatNum(noi),
			formatNum(cashflowPre),
			formatNum(cashflowPost),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportRow is one snapshot flattened for export.
type ExportRow struct {
	Row
}

// NewExportRow flattens a snapshot into export form.
func NewExportRow(propertyName string, snap *domain.YearlySnapshot) ExportRow {
	notes := ""
	if snap.Notes != nil {
		notes = *snap.Notes
	}
	return ExportRow{Row{
		PropertyName:  propertyName,
		Year:          snap.Year,
		Rent:          domain.Amount(snap.RentIncome),
		OtherIncome:   domain.Amount(snap.OtherIncome),
		Repairs:       domain.Amount(snap.Maintenance),
		Insurance:     domain.Amount(snap.Insurance),
		Rates:         domain.Amount(snap.CouncilRates),
		Strata:        domain.Amount(snap.StrataFees),
		PMFees:        domain.Amount(snap.PropertyMgmtFees),
		Utilities:     domain.Amount(snap.Utilities),
		OtherExpenses: domain.Amount(snap.OtherExpenses),
		InterestPaid:  domain.Amount(snap.InterestPaid),
		PrincipalPaid: domain.Amount(snap.PrincipalPaid),
		Capex:         domain.Amount(snap.Capex),
		Notes:         notes,
	}}
}
