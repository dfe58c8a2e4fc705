// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"smartparts/internal/models"
	"smartparts/internal/store"
	"smartparts/internal/treepath"
)

// Navigator answers read-only questions about the category tree. Every
// query is a single path predicate against the store; results carry their
// absolute depth so clients can indent without re-deriving it.
type Navigator struct {
	categories *store.CategoryStore
}

// NewNavigator returns a Navigator reading from the given store.
func NewNavigator(categories *store.CategoryStore) *Navigator {
	return &Navigator{categories: categories}
}

// Get returns a live category by ID, or models.ErrCategoryNotFound when it
// is missing or soft-deleted.
func (n *Navigator) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := n.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, models.ErrCategoryNotFound
	}
	c.Depth = treepath.Depth(c.Path) - 1
	return c, nil
}

// List returns live categories matching the filter, ordered by path.
func (n *Navigator) List(ctx context.Context, f store.CategoryFilter) ([]models.Category, error) {
	items, err := n.categories.List(ctx, f)
	if err != nil {
		return nil, err
	}
	setDepths(items)
	return items, nil
}

// Children returns the live direct children of a category, ordered by
// path.
func (n *Navigator) Children(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	if _, err := n.Get(ctx, id); err != nil {
		return nil, err
	}
	items, err := n.categories.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	setDepths(items)
	return items, nil
}

// Descendants returns every live category inside id's subtree, excluding
// id itself, in depth-first pre-order.
func (n *Navigator) Descendants(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	c, err := n.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := n.categories.Descendants(ctx, c.Path)
	if err != nil {
		return nil, err
	}
	setDepths(items)
	return items, nil
}

// IsDescendant reports whether candidate lies strictly inside ancestor's
// subtree. A category is never its own descendant, and missing or deleted
// categories are nobody's descendant.
func (n *Navigator) IsDescendant(ctx context.Context, ancestorID, candidateID uuid.UUID) (bool, error) {
	if ancestorID == candidateID {
		return false, nil
	}
	anc, err := n.categories.FindByID(ctx, ancestorID)
	if err != nil {
		return false, err
	}
	cand, err := n.categories.FindByID(ctx, candidateID)
	if err != nil {
		return false, err
	}
	if anc == nil || cand == nil {
		return false, nil
	}
	return treepath.IsDescendant(anc.Path, cand.Path), nil
}

// Breadcrumbs returns the chain from a root down to the category itself.
// The chain is reconstructed from the category's own path prefixes in a
// single lookup, never by walking parent pointers.
func (n *Navigator) Breadcrumbs(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	c, err := n.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	paths := append(treepath.Ancestors(c.Path), c.Path)
	items, err := n.categories.FindByPaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	// Delete refuses categories with live children, so every ancestor of a
	// live category must itself be live. A short chain means corruption.
	if len(items) != len(paths) {
		return nil, fmt.Errorf("breadcrumb chain for %s: found %d of %d nodes", id, len(items), len(paths))
	}
	setDepths(items)
	return items, nil
}

// Tree returns the whole live forest: root categories in path order with
// children nested under each.
func (n *Navigator) Tree(ctx context.Context) ([]*models.Category, error) {
	flat, err := n.categories.List(ctx, store.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	return AssembleForest(flat), nil
}

// AssembleForest links a flat, path-ordered category slice into a forest
// in two passes: index every node by ID, then attach each node to its
// parent. A node whose parent is absent from the input surfaces as a root
// instead of disappearing, so filtered listings still assemble.
func AssembleForest(flat []models.Category) []*models.Category {
	nodes := make(map[uuid.UUID]*models.Category, len(flat))
	for i := range flat {
		c := flat[i]
		nodes[c.ID] = &c
	}

	// Input order is path order, so children append in display order.
	var roots []*models.Category
	for i := range flat {
		node := nodes[flat[i].ID]
		node.Depth = treepath.Depth(node.Path) - 1
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

func setDepths(items []models.Category) {
	for i := range items {
		items[i].Depth = treepath.Depth(items[i].Path) - 1
	}
}
