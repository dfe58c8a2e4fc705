// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"smartparts/internal/label"
	"smartparts/internal/models"
	"smartparts/internal/store"
	"smartparts/internal/treepath"
)

// Mutator applies structural changes to the category tree. It validates
// intent against the live tree for precise errors, then delegates to the
// store primitives, which re-validate inside a serialized transaction. A
// mutation that fails validation at either level writes nothing.
type Mutator struct {
	categories *store.CategoryStore
	nav        *Navigator
	refs       []ReferenceChecker
}

// NewMutator returns a Mutator. Registered reference checkers veto deletes
// of categories that outside records still point at.
func NewMutator(categories *store.CategoryStore, nav *Navigator, refs ...ReferenceChecker) *Mutator {
	return &Mutator{categories: categories, nav: nav, refs: refs}
}

// Create adds a category under c.ParentID (nil for a root) and returns it
// with its computed path.
func (m *Mutator) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if label.Sanitize(c.Name) == "" {
		return nil, models.ErrEmptyName
	}
	created, err := m.categories.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	created.Depth = treepath.Depth(created.Path) - 1
	return created, nil
}

// Update changes a category's name, description, or visibility. A name
// change that alters the sanitized label relocates the whole subtree
// exactly the way a move does.
func (m *Mutator) Update(ctx context.Context, id uuid.UUID, u store.CategoryUpdate) (*models.Category, error) {
	updated, err := m.categories.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	updated.Depth = treepath.Depth(updated.Path) - 1
	return updated, nil
}

// Move reparents a category, carrying its entire subtree with it.
// newParentID nil moves it to the root level.
func (m *Mutator) Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID, actor *uuid.UUID) (*models.Category, error) {
	cur, err := m.nav.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if newParentID != nil {
		if *newParentID == id {
			return nil, models.ErrCircularReference
		}
		parent, err := m.categories.FindByID(ctx, *newParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, models.ErrInvalidParent
		}
		if treepath.IsDescendant(cur.Path, parent.Path) {
			return nil, models.ErrCircularReference
		}
	}
	moved, err := m.categories.MoveSubtree(ctx, id, newParentID, actor)
	if err != nil {
		return nil, err
	}
	moved.Depth = treepath.Depth(moved.Path) - 1
	return moved, nil
}

// Delete soft-deletes a category once nothing depends on it: live children
// block with models.ErrHasChildren, and any reference checker reporting
// use blocks with models.ErrReferencedExternally.
func (m *Mutator) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	if _, err := m.nav.Get(ctx, id); err != nil {
		return err
	}
	hasChildren, err := m.categories.HasLiveChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return models.ErrHasChildren
	}
	for _, rc := range m.refs {
		inUse, err := rc.InUse(ctx, id)
		if err != nil {
			return fmt.Errorf("reference check: %w", err)
		}
		if inUse {
			return models.ErrReferencedExternally
		}
	}
	return m.categories.SoftDelete(ctx, id, actor)
}
