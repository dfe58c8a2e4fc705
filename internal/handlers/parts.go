// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"smartparts/internal/models"
	"smartparts/internal/storage"
	"smartparts/internal/store"
)

// Parts groups the part endpoints. storage may be nil when S3 is not
// configured; deleting a part then skips object cleanup.
type Parts struct {
	parts       *store.PartStore
	attachments *store.AttachmentStore
	storage     *storage.Client
}

func NewParts(parts *store.PartStore, attachments *store.AttachmentStore, st *storage.Client) *Parts {
	return &Parts{parts: parts, attachments: attachments, storage: st}
}

// List returns parts ordered by name, optionally filtered by category,
// search term, or low stock.
func (h *Parts) List(w http.ResponseWriter, r *http.Request) {
	filter := store.PartFilter{
		Search:   r.URL.Query().Get("q"),
		LowStock: queryBool(r, "low_stock"),
	}
	categoryID, ok := queryUUID(w, r, "category")
	if !ok {
		return
	}
	filter.CategoryID = categoryID

	items, err := h.parts.List(r.Context(), filter)
	if err != nil {
		slog.Error("list parts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if items == nil {
		items = []models.Part{}
	}
	writeJSON(w, http.StatusOK, items)
}

type createPartRequest struct {
	Name          string     `json:"name"`
	PartNumber    string     `json:"part_number"`
	Description   string     `json:"description"`
	CategoryID    uuid.UUID  `json:"category_id"`
	StockLevel    int        `json:"stock_level"`
	MinStockLevel int        `json:"min_stock_level"`
	CreatedBy     *uuid.UUID `json:"created_by"`
}

// Create adds a part to a live category.
func (h *Parts) Create(w http.ResponseWriter, r *http.Request) {
	var req createPartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validatePartInput(req.Name, req.PartNumber, req.Description); msg != "" {
		writeError(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if req.CategoryID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "validation", "category_id is required")
		return
	}
	if req.StockLevel < 0 || req.MinStockLevel < 0 {
		writeError(w, http.StatusBadRequest, "validation", "Stock levels cannot be negative.")
		return
	}

	created, err := h.parts.Create(r.Context(), &models.Part{
		Name:          req.Name,
		PartNumber:    req.PartNumber,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		StockLevel:    req.StockLevel,
		MinStockLevel: req.MinStockLevel,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		respondTreeError(w, err, "create part")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns a single part.
func (h *Parts) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.parts.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("get part failed", "error", err, "part", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "part not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updatePartRequest struct {
	Name          *string    `json:"name"`
	PartNumber    *string    `json:"part_number"`
	Description   *string    `json:"description"`
	CategoryID    *uuid.UUID `json:"category_id"`
	StockLevel    *int       `json:"stock_level"`
	MinStockLevel *int       `json:"min_stock_level"`
}

// Update changes part fields. Absent fields keep their current values;
// moving the part to another category checks that the target is live.
func (h *Parts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.parts.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("get part failed", "error", err, "part", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "part not found")
		return
	}

	var req updatePartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.PartNumber != nil {
		p.PartNumber = *req.PartNumber
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
	if req.StockLevel != nil {
		p.StockLevel = *req.StockLevel
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}

	if msg := validatePartInput(p.Name, p.PartNumber, p.Description); msg != "" {
		writeError(w, http.StatusBadRequest, "validation", msg)
		return
	}
	if p.StockLevel < 0 || p.MinStockLevel < 0 {
		writeError(w, http.StatusBadRequest, "validation", "Stock levels cannot be negative.")
		return
	}

	updated, err := h.parts.Update(r.Context(), p)
	if err != nil {
		respondTreeError(w, err, "update part")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "not_found", "part not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a part together with its attachments. Attachment rows
// are collected before the delete because the foreign key cascade wipes
// them; the S3 objects are cleaned up best-effort afterwards.
func (h *Parts) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.parts.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("get part failed", "error", err, "part", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "part not found")
		return
	}

	attachments, err := h.attachments.ListByPart(r.Context(), id)
	if err != nil {
		slog.Error("list attachments failed", "error", err, "part", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	if err := h.parts.Delete(r.Context(), id); err != nil {
		slog.Error("delete part failed", "error", err, "part", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	if h.storage != nil {
		for _, a := range attachments {
			if err := h.storage.Delete(r.Context(), a.S3Key); err != nil {
				slog.Warn("failed to delete attachment object", "error", err, "key", a.S3Key)
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
