package importer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// Service imports and exports the legacy yearly snapshots as CSV. Rows are
// matched to properties by name, case-insensitively, because the format
// predates stable IDs.
type Service struct {
	PropertyRepo domain.PropertyRepository
	SnapshotRepo domain.SnapshotRepository
}

// NewService creates a new importer Service instance
func NewService(propertyRepo domain.PropertyRepository, snapshotRepo domain.SnapshotRepository) *Service {
	return &Service{
		PropertyRepo: propertyRepo,
		SnapshotRepo: snapshotRepo,
	}
}

// ImportResult reports how many rows were written and which were rejected.
type ImportResult struct {
	Imported int
	Errors   []RowError
}

// Import parses the CSV and upserts one snapshot per accepted row. Rows
// naming an unknown property are reported, not fatal; existing
// property-year rows are replaced.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, err
	}

	properties, err := s.PropertyRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	byName := make(map[string]*domain.Property, len(properties))
	for _, p := range properties {
		byName[strings.ToLower(p.Name)] = p
	}

	result := &ImportResult{Errors: parsed.Errors}
	for _, row := range parsed.Rows {
		property, ok := byName[strings.ToLower(row.PropertyName)]
		if !ok {
			result.Errors = append(result.Errors, RowError{
				Row:     row.Line,
				Message: fmt.Sprintf("Unknown property: %s", row.PropertyName),
			})
			continue
		}

		snap := row.Snapshot(property.ID)
		existing, err := s.SnapshotRepo.GetByKey(ctx, snap.Key())
		if err != nil {
			return nil, fmt.Errorf("failed to look up snapshot: %w", err)
		}
		if existing != nil {
			snap.ID = existing.ID
		} else {
			snap.ID = uuid.New()
		}

		if err := s.SnapshotRepo.Upsert(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to upsert snapshot row %d: %w", row.Line, err)
		}
		result.Imported++
	}

	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Row < result.Errors[j].Row })
	return result, nil
}

// Export writes every property's snapshots as CSV, ordered by property name
// then year.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	properties, err := s.PropertyRepo.List(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list properties: %w", err)
	}
	sort.Slice(properties, func(i, j int) bool { return properties[i].Name < properties[j].Name })

	var rows []ExportRow
	for _, property := range properties {
		snapshots, err := s.SnapshotRepo.ListByProperty(ctx, property.ID)
		if err != nil {
			return fmt.Errorf("failed to load snapshots for %s: %w", property.Name, err)
		}
		for _, snap := range snapshots {
			rows = append(rows, NewExportRow(property.Name, snap))
		}
	}

	return WriteCSV(w, rows)
}
