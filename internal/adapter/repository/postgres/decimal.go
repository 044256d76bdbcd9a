package postgres

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// NUMERIC columns are scanned as strings and coerced to float64 exactly
// once, here at the loader boundary. Everything above this package works in
// float64.

func parseNumeric(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse numeric %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

func parseNullNumeric(ns sql.NullString) (*float64, error) {
	if !ns.Valid {
		return nil, nil
	}
	v, err := parseNumeric(ns.String)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// numericArg formats a float64 for a NUMERIC parameter without binary
// float artifacts.
func numericArg(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func nullNumericArg(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return numericArg(*v)
}
