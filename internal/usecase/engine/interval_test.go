package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, daysBetween(date(2025, time.January, 1), date(2025, time.January, 1)))
	assert.Equal(t, 31, daysBetween(date(2025, time.January, 1), date(2025, time.February, 1)))
	assert.Equal(t, -31, daysBetween(date(2025, time.February, 1), date(2025, time.January, 1)))
	assert.Equal(t, 365, daysBetween(date(2025, time.January, 1), date(2026, time.January, 1)))
	// Leap year
	assert.Equal(t, 366, daysBetween(date(2024, time.January, 1), date(2025, time.January, 1)))
}

func TestCadenceDays(t *testing.T) {
	assert.Equal(t, 7.0, cadenceDays(domain.CadenceWeekly))
	assert.Equal(t, 14.0, cadenceDays(domain.CadenceFortnightly))
	assert.InDelta(t, 30.4375, cadenceDays(domain.CadenceMonthly), 1e-9)
	assert.InDelta(t, 91.3125, cadenceDays(domain.CadenceQuarterly), 1e-9)
	assert.Equal(t, 365.25, cadenceDays(domain.CadenceAnnually))
	// Unknown cadences fall back to a year rather than failing
	assert.Equal(t, 365.25, cadenceDays(domain.Cadence("daily")))
}

func TestClampDate(t *testing.T) {
	min := date(2025, time.March, 1)
	max := date(2025, time.June, 1)

	assert.Equal(t, min, clampDate(date(2025, time.January, 10), min, max))
	assert.Equal(t, max, clampDate(date(2025, time.December, 25), min, max))
	inside := date(2025, time.April, 15)
	assert.Equal(t, inside, clampDate(inside, min, max))
}
