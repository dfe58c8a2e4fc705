// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persistent domain types shared by the store,
// tree, and handler layers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is one node of the hierarchical part catalog.
//
// Path is the materialized position of the node: the dot-joined sanitized
// labels of every ancestor followed by the node's own label. It is derived
// from Name and ParentID on every structural change and is never edited
// directly.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsPublic    bool       `json:"is_public"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedBy   *uuid.UUID `json:"updated_by,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Soft-delete state. Deleted rows stay in the table for audit but are
	// invisible to every read path.
	IsDeleted bool       `json:"-"`
	DeletedBy *uuid.UUID `json:"-"`
	DeletedAt *time.Time `json:"-"`

	// Virtual fields populated by queries and tree assembly, not stored
	// in the categories table.
	Children     []*Category    `json:"children,omitempty"`
	Depth        int            `json:"depth"`
	PartCount    int            `json:"part_count,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}
