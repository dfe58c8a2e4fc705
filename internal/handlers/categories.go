// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"smartparts/internal/cache"
	"smartparts/internal/models"
	"smartparts/internal/store"
	"smartparts/internal/tree"
)

// Categories groups the category tree endpoints. Reads go through the
// navigator (tree and breadcrumb reads consult the Valkey cache first);
// every structural mutation goes through the mutator and clears the cache.
type Categories struct {
	nav       *tree.Navigator
	mut       *tree.Mutator
	fields    *store.CustomFieldStore
	parts     *store.PartStore
	treeCache *cache.TreeCache
}

// NewCategories creates the category handler group. treeCache may be nil
// when Valkey is not configured.
func NewCategories(nav *tree.Navigator, mut *tree.Mutator, fields *store.CustomFieldStore, parts *store.PartStore, treeCache *cache.TreeCache) *Categories {
	return &Categories{nav: nav, mut: mut, fields: fields, parts: parts, treeCache: treeCache}
}

// invalidate clears the cached forest and breadcrumbs after a mutation.
func (h *Categories) invalidate(ctx context.Context) {
	if h.treeCache != nil {
		h.treeCache.InvalidateAll(ctx)
	}
}

// queryBool reports whether a query parameter is set to a truthy value.
func queryBool(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "1" || v == "true"
}

// queryUUID parses an optional UUID query parameter. Returns (nil, true)
// when absent; writes a 400 and returns false when malformed.
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a UUID")
		return nil, false
	}
	return &id, true
}

// List returns live categories in path order, optionally filtered by
// direct parent, root level, visibility, or creator.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	filter := store.CategoryFilter{
		RootsOnly:  queryBool(r, "roots"),
		PublicOnly: queryBool(r, "public"),
	}
	parentID, ok := queryUUID(w, r, "parent")
	if !ok {
		return
	}
	filter.ParentID = parentID
	createdBy, ok := queryUUID(w, r, "created_by")
	if !ok {
		return
	}
	filter.CreatedBy = createdBy

	items, err := h.nav.List(r.Context(), filter)
	if err != nil {
		respondTreeError(w, err, "list categories")
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeJSON(w, http.StatusOK, items)
}

type createCategoryRequest struct {
	Name        string     `json:"name"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description string     `json:"description"`
	IsPublic    *bool      `json:"is_public"`
	CreatedBy   *uuid.UUID `json:"created_by"`
}

// Create adds a category under parent_id, or at the root level when
// parent_id is absent.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateCategoryInput(req.Name, req.Description); msg != "" {
		writeError(w, http.StatusBadRequest, "validation", msg)
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	created, err := h.mut.Create(r.Context(), &models.Category{
		Name:        req.Name,
		ParentID:    req.ParentID,
		Description: req.Description,
		IsPublic:    isPublic,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		respondTreeError(w, err, "create category")
		return
	}

	h.invalidate(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// Tree returns the whole live forest with children nested, serving from
// the Valkey cache when possible.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.treeCache != nil {
		if forest, ok := h.treeCache.GetForest(ctx); ok {
			writeJSON(w, http.StatusOK, forest)
			return
		}
	}

	forest, err := h.nav.Tree(ctx)
	if err != nil {
		respondTreeError(w, err, "assemble tree")
		return
	}
	if forest == nil {
		forest = []*models.Category{}
	}

	if h.treeCache != nil {
		h.treeCache.SetForest(ctx, forest)
	}
	writeJSON(w, http.StatusOK, forest)
}

// Get returns a single live category. With ?fields=1 the response carries
// the category's custom-field mapping.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	c, err := h.nav.Get(r.Context(), id)
	if err != nil {
		respondTreeError(w, err, "get category")
		return
	}

	if queryBool(r, "fields") {
		fields, err := h.fields.FieldsFor(r.Context(), id)
		if err != nil {
			slog.Error("load custom fields failed", "error", err, "category", id)
			writeError(w, http.StatusInternalServerError, "internal", "internal server error")
			return
		}
		if fields == nil {
			fields = map[string]any{}
		}
		c.CustomFields = fields
	}
	writeJSON(w, http.StatusOK, c)
}

type updateCategoryRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	IsPublic    *bool      `json:"is_public"`
	UpdatedBy   *uuid.UUID `json:"updated_by"`
}

// Update changes name, description, or visibility. A rename that changes
// the sanitized label relocates the whole subtree.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req updateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil {
		if msg := validateCategoryInput(*req.Name, ""); msg != "" {
			writeError(w, http.StatusBadRequest, "validation", msg)
			return
		}
	}
	if req.Description != nil {
		if msg := validateCategoryInput("x", *req.Description); msg != "" {
			writeError(w, http.StatusBadRequest, "validation", msg)
			return
		}
	}

	updated, err := h.mut.Update(r.Context(), id, store.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		UpdatedBy:   req.UpdatedBy,
	})
	if err != nil {
		respondTreeError(w, err, "update category")
		return
	}

	h.invalidate(r.Context())
	writeJSON(w, http.StatusOK, updated)
}

type moveCategoryRequest struct {
	ParentID  *uuid.UUID `json:"parent_id"`
	UpdatedBy *uuid.UUID `json:"updated_by"`
}

// Move reparents a category and its whole subtree. A null or absent
// parent_id moves it to the root level.
func (h *Categories) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req moveCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	moved, err := h.mut.Move(r.Context(), id, req.ParentID, req.UpdatedBy)
	if err != nil {
		respondTreeError(w, err, "move category")
		return
	}

	h.invalidate(r.Context())
	writeJSON(w, http.StatusOK, moved)
}

// Delete soft-deletes a category. Refused while live children exist or
// any part still references it. The optional deleted_by query parameter
// records the actor.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	actor, ok := queryUUID(w, r, "deleted_by")
	if !ok {
		return
	}

	if err := h.mut.Delete(r.Context(), id, actor); err != nil {
		respondTreeError(w, err, "delete category")
		return
	}

	h.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Children returns the live direct children of a category in path order.
func (h *Categories) Children(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	items, err := h.nav.Children(r.Context(), id)
	if err != nil {
		respondTreeError(w, err, "list children")
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Descendants returns every live category inside the subtree in
// depth-first pre-order, excluding the category itself.
func (h *Categories) Descendants(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	items, err := h.nav.Descendants(r.Context(), id)
	if err != nil {
		respondTreeError(w, err, "list descendants")
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Breadcrumbs returns the root-first chain ending at the category itself,
// serving from the Valkey cache when possible.
func (h *Categories) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if h.treeCache != nil {
		if chain, ok := h.treeCache.GetBreadcrumbs(ctx, id); ok {
			writeJSON(w, http.StatusOK, chain)
			return
		}
	}

	chain, err := h.nav.Breadcrumbs(ctx, id)
	if err != nil {
		respondTreeError(w, err, "build breadcrumbs")
		return
	}

	if h.treeCache != nil {
		h.treeCache.SetBreadcrumbs(ctx, id, chain)
	}
	writeJSON(w, http.StatusOK, chain)
}

// GetFields returns the category's custom-field mapping. A category with
// no stored mapping yields an empty object.
func (h *Categories) GetFields(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if _, err := h.nav.Get(r.Context(), id); err != nil {
		respondTreeError(w, err, "get category")
		return
	}

	fields, err := h.fields.FieldsFor(r.Context(), id)
	if err != nil {
		slog.Error("load custom fields failed", "error", err, "category", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if fields == nil {
		fields = map[string]any{}
	}
	writeJSON(w, http.StatusOK, fields)
}

// PutFields replaces the category's custom-field mapping with the request
// body. An empty object clears it. Values are stored opaquely.
func (h *Categories) PutFields(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if _, err := h.nav.Get(r.Context(), id); err != nil {
		respondTreeError(w, err, "get category")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFieldsBytes)
	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}

	if err := h.fields.SetFields(r.Context(), id, fields); err != nil {
		slog.Error("store custom fields failed", "error", err, "category", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if fields == nil {
		fields = map[string]any{}
	}
	writeJSON(w, http.StatusOK, fields)
}

// Parts lists the parts directly in a category, or with ?subtree=1 the
// parts of the category and every descendant in path order.
func (h *Categories) Parts(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.nav.Get(r.Context(), id)
	if err != nil {
		respondTreeError(w, err, "get category")
		return
	}

	var items []models.Part
	if queryBool(r, "subtree") {
		items, err = h.parts.ListBySubtree(r.Context(), c.Path)
	} else {
		items, err = h.parts.List(r.Context(), store.PartFilter{CategoryID: &id})
	}
	if err != nil {
		slog.Error("list parts in category failed", "error", err, "category", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if items == nil {
		items = []models.Part{}
	}
	writeJSON(w, http.StatusOK, items)
}
