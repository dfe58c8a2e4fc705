// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"smartparts/internal/models"
)

// PartStore manages catalog parts in the database.
type PartStore struct {
	db *sql.DB
}

// NewPartStore returns a new PartStore.
func NewPartStore(db *sql.DB) *PartStore {
	return &PartStore{db: db}
}

const partColumns = `id, name, part_number, description, category_id, stock_level, min_stock_level, created_by, created_at, updated_at`

// scanPart scans a row into a Part struct.
func scanPart(scanner interface{ Scan(...any) error }) (*models.Part, error) {
	var p models.Part
	err := scanner.Scan(
		&p.ID, &p.Name, &p.PartNumber, &p.Description, &p.CategoryID,
		&p.StockLevel, &p.MinStockLevel,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PartFilter narrows List. The zero value lists every part.
type PartFilter struct {
	CategoryID *uuid.UUID
	Search     string // case-insensitive match on name or part number
	LowStock   bool   // only parts below their minimum stock level
}

// List returns parts ordered by name.
func (s *PartStore) List(ctx context.Context, f PartFilter) ([]models.Part, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+partColumns+` FROM parts
		WHERE ($1::uuid IS NULL OR category_id = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR part_number ILIKE '%' || $2 || '%')
		  AND (NOT $3::bool OR stock_level < min_stock_level)
		ORDER BY name
	`, f.CategoryID, f.Search, f.LowStock)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	var items []models.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// ListBySubtree returns the parts of a category and every category below
// it, ordered by category path then part name. CategoryPath is populated
// on each part.
func (s *PartStore) ListBySubtree(ctx context.Context, rootPath string) ([]models.Part, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.part_number, p.description, p.category_id,
		       p.stock_level, p.min_stock_level, p.created_by, p.created_at, p.updated_at,
		       c.path
		FROM parts p
		JOIN categories c ON c.id = p.category_id
		WHERE NOT c.is_deleted AND (c.path = $1 OR c.path LIKE $2)
		ORDER BY c.path, p.name
	`, rootPath, subtreePattern(rootPath))
	if err != nil {
		return nil, fmt.Errorf("list parts by subtree: %w", err)
	}
	defer rows.Close()

	var items []models.Part
	for rows.Next() {
		var p models.Part
		err := rows.Scan(
			&p.ID, &p.Name, &p.PartNumber, &p.Description, &p.CategoryID,
			&p.StockLevel, &p.MinStockLevel,
			&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryPath,
		)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// FindByID retrieves a part by ID. Returns nil if not found.
func (s *PartStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+partColumns+` FROM parts WHERE id = $1`, id)
	p, err := scanPart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find part by id: %w", err)
	}
	return p, nil
}

// Create inserts a new part and returns it. The insert only happens when
// the target category exists and is live; otherwise it fails with
// models.ErrUnknownCategory.
func (s *PartStore) Create(ctx context.Context, p *models.Part) (*models.Part, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO parts (name, part_number, description, category_id, stock_level, min_stock_level, created_by)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE EXISTS (SELECT 1 FROM categories WHERE id = $4 AND NOT is_deleted)
		RETURNING `+partColumns,
		p.Name, p.PartNumber, p.Description, p.CategoryID, p.StockLevel, p.MinStockLevel, p.CreatedBy,
	)
	created, err := scanPart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUnknownCategory
	}
	if err != nil {
		return nil, fmt.Errorf("create part: %w", err)
	}
	return created, nil
}

// Update modifies an existing part. Returns nil if the part no longer
// exists; fails with models.ErrUnknownCategory when the target category is
// missing or deleted.
func (s *PartStore) Update(ctx context.Context, p *models.Part) (*models.Part, error) {
	var live bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND NOT is_deleted)`, p.CategoryID,
	).Scan(&live)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !live {
		return nil, models.ErrUnknownCategory
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE parts SET
			name = $1, part_number = $2, description = $3, category_id = $4,
			stock_level = $5, min_stock_level = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+partColumns,
		p.Name, p.PartNumber, p.Description, p.CategoryID, p.StockLevel, p.MinStockLevel, p.ID,
	)
	updated, err := scanPart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update part: %w", err)
	}
	return updated, nil
}

// Delete removes a part by ID. Attachment rows go with it via the foreign
// key cascade; the caller is responsible for the S3 objects.
func (s *PartStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	return nil
}

// InUse reports whether any part still references the category. The tree
// mutator consults it before allowing a category delete.
func (s *PartStore) InUse(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parts WHERE category_id = $1)`, categoryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check parts in category: %w", err)
	}
	return exists, nil
}
