// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CustomFieldStore manages the free-form field document attached to a
// category. The tree engine never interprets these values; they ride along
// as a single JSONB document per category.
type CustomFieldStore struct {
	db *sql.DB
}

// NewCustomFieldStore returns a new CustomFieldStore.
func NewCustomFieldStore(db *sql.DB) *CustomFieldStore {
	return &CustomFieldStore{db: db}
}

// FieldsFor returns the custom field document of a category, or nil when
// none has been set.
func (s *CustomFieldStore) FieldsFor(ctx context.Context, categoryID uuid.UUID) (map[string]any, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM category_custom_fields WHERE category_id = $1`, categoryID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load custom fields: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode custom fields: %w", err)
	}
	return fields, nil
}

// SetFields replaces the custom field document of a category. An empty
// document removes the row entirely.
func (s *CustomFieldStore) SetFields(ctx context.Context, categoryID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM category_custom_fields WHERE category_id = $1`, categoryID)
		if err != nil {
			return fmt.Errorf("clear custom fields: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode custom fields: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO category_custom_fields (category_id, fields)
		VALUES ($1, $2)
		ON CONFLICT (category_id) DO UPDATE SET fields = EXCLUDED.fields, updated_at = NOW()`,
		categoryID, raw,
	)
	if err != nil {
		return fmt.Errorf("set custom fields: %w", err)
	}
	return nil
}
