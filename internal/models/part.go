// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Part is a stocked catalog item. Every part lives in exactly one category;
// the category cannot be deleted while parts still point at it.
type Part struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	PartNumber    string     `json:"part_number,omitempty"`
	Description   string     `json:"description,omitempty"`
	CategoryID    uuid.UUID  `json:"category_id"`
	StockLevel    int        `json:"stock_level"`
	MinStockLevel int        `json:"min_stock_level"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// CategoryPath is populated by subtree listings so clients can show
	// where in the tree a part came from without extra lookups.
	CategoryPath string `json:"category_path,omitempty"`
}
