// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API for the parts catalog.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"smartparts/internal/models"
)

// apiError is the error body every endpoint returns: a stable machine
// code plus a human-readable message.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError writes the JSON error shape.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]apiError{"error": {Code: code, Message: message}})
}

// treeErrorStatus maps the category engine's error taxonomy onto HTTP.
// Missing things are 404, structural conflicts are 409, refused input is
// 400. Returns false when the error is not part of the taxonomy.
func treeErrorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		return http.StatusNotFound, "category_not_found", true
	case errors.Is(err, models.ErrEmptyName):
		return http.StatusBadRequest, "empty_name", true
	case errors.Is(err, models.ErrInvalidParent):
		return http.StatusConflict, "invalid_parent", true
	case errors.Is(err, models.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name", true
	case errors.Is(err, models.ErrCircularReference):
		return http.StatusConflict, "circular_reference", true
	case errors.Is(err, models.ErrHasChildren):
		return http.StatusConflict, "has_children", true
	case errors.Is(err, models.ErrReferencedExternally):
		return http.StatusConflict, "referenced_externally", true
	case errors.Is(err, models.ErrUnknownCategory):
		return http.StatusConflict, "unknown_category", true
	}
	return 0, "", false
}

// respondTreeError writes a taxonomy error, or logs and writes a generic
// 500 for anything else.
func respondTreeError(w http.ResponseWriter, err error, op string) {
	if status, code, ok := treeErrorStatus(err); ok {
		writeError(w, status, code, err.Error())
		return
	}
	slog.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal server error")
}

// idParam parses the {id} chi URL parameter. Writes a 400 and returns
// false when it is not a UUID.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON decodes a request body into dst, rejecting unknown fields.
// Writes a 400 and returns false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON: "+err.Error())
		return false
	}
	return true
}
