package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/MusHusKat/investment-tracker/internal/domain"
)

// propertyRepository implements domain.PropertyRepository
type propertyRepository struct {
	db *DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *DB) domain.PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `id, name, address, tags, ownership_pct, appreciation_rate, is_active, created_at, updated_at`

func scanProperty(scan func(dest ...interface{}) error) (*domain.Property, error) {
	var property domain.Property
	var address sql.NullString
	var ownershipStr string
	var appreciationStr sql.NullString

	err := scan(
		&property.ID,
		&property.Name,
		&address,
		pq.Array(&property.Tags),
		&ownershipStr,
		&appreciationStr,
		&property.IsActive,
		&property.CreatedAt,
		&property.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if address.Valid {
		property.Address = &address.String
	}
	if property.OwnershipPct, err = parseNumeric(ownershipStr); err != nil {
		return nil, fmt.Errorf("ownership_pct: %w", err)
	}
	if property.AppreciationRate, err = parseNullNumeric(appreciationStr); err != nil {
		return nil, fmt.Errorf("appreciation_rate: %w", err)
	}

	return &property, nil
}

// GetByID retrieves a property by its ID
func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE id = $1
	`

	property, err := scanProperty(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get property by ID: %w", err)
	}

	return property, nil
}

// List retrieves all properties, optionally restricted to active ones
func (r *propertyRepository) List(ctx context.Context, onlyActive bool) ([]*domain.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
	`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var properties []*domain.Property
	for rows.Next() {
		property, err := scanProperty(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, property)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate properties: %w", err)
	}

	return properties, nil
}

// Create creates a new property
func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	query := `
		INSERT INTO properties (id, name, address, tags, ownership_pct, appreciation_rate, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`

	var address interface{}
	if property.Address != nil {
		address = *property.Address
	}

	_, err := r.db.ExecContext(ctx, query,
		property.ID,
		property.Name,
		address,
		pq.Array(property.Tags),
		numericArg(property.OwnershipPct),
		nullNumericArg(property.AppreciationRate),
		property.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	return nil
}

// portfolioRepository implements domain.PortfolioRepository
type portfolioRepository struct {
	db *DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *DB) domain.PortfolioRepository {
	return &portfolioRepository{db: db}
}

// GetByID retrieves a portfolio with its member property IDs
func (r *portfolioRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	query := `
		SELECT id, name, created_at
		FROM portfolios
		WHERE id = $1
	`

	var portfolio domain.Portfolio
	err := r.db.QueryRowContext(ctx, query, id).Scan(&portfolio.ID, &portfolio.Name, &portfolio.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("portfolio not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get portfolio by ID: %w", err)
	}

	memberQuery := `
		SELECT property_id
		FROM portfolio_properties
		WHERE portfolio_id = $1
	`
	rows, err := r.db.QueryContext(ctx, memberQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var propertyID uuid.UUID
		if err := rows.Scan(&propertyID); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio member: %w", err)
		}
		portfolio.PropertyIDs = append(portfolio.PropertyIDs, propertyID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate portfolio members: %w", err)
	}

	return &portfolio, nil
}

// List retrieves all portfolios
func (r *portfolioRepository) List(ctx context.Context) ([]*domain.Portfolio, error) {
	query := `
		SELECT id, name, created_at
		FROM portfolios
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*domain.Portfolio
	for rows.Next() {
		var portfolio domain.Portfolio
		if err := rows.Scan(&portfolio.ID, &portfolio.Name, &portfolio.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, &portfolio)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate portfolios: %w", err)
	}

	for _, portfolio := range portfolios {
		full, err := r.GetByID(ctx, portfolio.ID)
		if err != nil {
			return nil, err
		}
		portfolio.PropertyIDs = full.PropertyIDs
	}

	return portfolios, nil
}

// Create creates a new portfolio with its memberships
func (r *portfolioRepository) Create(ctx context.Context, portfolio *domain.Portfolio) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO portfolios (id, name, created_at)
		VALUES ($1, $2, NOW())
	`
	if _, err := tx.ExecContext(ctx, query, portfolio.ID, portfolio.Name); err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}

	memberQuery := `
		INSERT INTO portfolio_properties (portfolio_id, property_id)
		VALUES ($1, $2)
	`
	for _, propertyID := range portfolio.PropertyIDs {
		if _, err := tx.ExecContext(ctx, memberQuery, portfolio.ID, propertyID); err != nil {
			return fmt.Errorf("failed to add portfolio member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit portfolio: %w", err)
	}
	return nil
}
