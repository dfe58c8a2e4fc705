// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "errors"

// Category mutation failures. Each is terminal: when a store or tree
// operation returns one of these, no write happened and the caller decides
// whether to retry with different input. Match with errors.Is; the store
// wraps them with query context.
var (
	// ErrCategoryNotFound covers both missing and soft-deleted targets.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrInvalidParent is returned when the requested parent does not
	// exist or is soft-deleted.
	ErrInvalidParent = errors.New("parent category not found")

	// ErrDuplicateName means another live sibling already owns the label
	// the name sanitizes to, which would collide at the same path.
	ErrDuplicateName = errors.New("a sibling category with the same label already exists")

	// ErrCircularReference rejects moves that would place a category
	// under itself or inside its own subtree.
	ErrCircularReference = errors.New("category cannot be moved inside its own subtree")

	// ErrHasChildren blocks deletion while live child categories remain.
	ErrHasChildren = errors.New("category still has child categories")

	// ErrReferencedExternally blocks deletion while records outside the
	// tree, such as parts, still reference the category.
	ErrReferencedExternally = errors.New("category is still referenced by other records")

	// ErrEmptyName rejects names that sanitize to an empty label and so
	// cannot occupy a path segment.
	ErrEmptyName = errors.New("category name has no path-safe characters")
)

// ErrUnknownCategory is returned when a part create or update points at a
// category id that does not exist or is soft-deleted.
var ErrUnknownCategory = errors.New("part references an unknown category")
