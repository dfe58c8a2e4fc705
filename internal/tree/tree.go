// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree is the category hierarchy engine.
//
// All structural questions are answered from materialized paths: ancestry
// is a prefix predicate, breadcrumbs are the row's own path prefixes, and
// subtrees are contiguous path ranges. Parent pointers exist in the schema
// for direct-children queries and referential integrity, but no operation
// ever walks them iteratively.
//
// Reads go through Navigator, structural changes through Mutator. Both
// speak in terms of the sentinel errors in the models package.
package tree

import (
	"context"

	"github.com/google/uuid"
)

// ReferenceChecker reports whether records outside the category tree still
// reference a category. The mutator consults every registered checker
// before allowing a delete; the checks live with the referencing data, not
// with the engine.
type ReferenceChecker interface {
	InUse(ctx context.Context, categoryID uuid.UUID) (bool, error)
}

// CustomFieldSource loads the free-form field document attached to a
// category. The engine passes these documents through without interpreting
// them.
type CustomFieldSource interface {
	FieldsFor(ctx context.Context, categoryID uuid.UUID) (map[string]any, error)
}
