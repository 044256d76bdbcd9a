package domain

import (
	"time"

	"github.com/google/uuid"
)

// Property is the join key for all event streams. It carries no financial
// state of its own; everything derivable lives in the events.
type Property struct {
	ID               uuid.UUID
	Name             string
	Address          *string
	Tags             []string
	OwnershipPct     float64 // 0-100; KPI figures stay absolute, callers scale
	AppreciationRate *float64
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OwnershipRatio clamps the ownership percentage to [0, 100] and returns it
// as a 0-1 ratio for "my share" displays.
func (p *Property) OwnershipRatio() float64 {
	pct := p.OwnershipPct
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct / 100
}

// Portfolio is a named grouping of properties for combined reporting.
type Portfolio struct {
	ID          uuid.UUID
	Name        string
	PropertyIDs []uuid.UUID
	CreatedAt   time.Time
}
