// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"smartparts/internal/models"
)

// --- Create / Get ---

func TestPartCreate_Valid_Returns201(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, uniqName("Resistor Kits"), nil)

	name := uniqName("0805 1k")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parts",
		jsonBody(t, map[string]any{
			"name":            name,
			"part_number":     "RC0805FR-071KL",
			"category_id":     cat.ID,
			"stock_level":     250,
			"min_stock_level": 50,
		}))
	rec := httptest.NewRecorder()
	env.PartH.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Create: got status %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created models.Part
	decodeBody(t, rec, &created)
	if created.Name != name || created.PartNumber != "RC0805FR-071KL" {
		t.Errorf("Create: got %q/%q", created.Name, created.PartNumber)
	}
	if created.CategoryID != cat.ID {
		t.Errorf("Create: category = %v, want %v", created.CategoryID, cat.ID)
	}
	if created.StockLevel != 250 || created.MinStockLevel != 50 {
		t.Errorf("Create: stock = %d/%d, want 250/50", created.StockLevel, created.MinStockLevel)
	}
}

func TestPartCreate_MissingCategory_Returns400(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parts",
		jsonBody(t, map[string]any{"name": uniqName("Loose Part")}))
	rec := httptest.NewRecorder()
	env.PartH.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Create without category: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPartCreate_UnknownCategory_Returns409(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parts",
		jsonBody(t, map[string]any{"name": uniqName("Ghost Part"), "category_id": uuid.New()}))
	rec := httptest.NewRecorder()
	env.PartH.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("Create unknown category: got status %d, want %d", rec.Code, http.StatusConflict)
	}
	if code := errorCode(t, rec); code != "unknown_category" {
		t.Errorf("Create unknown category: error code = %q, want unknown_category", code)
	}
}

func TestPartCreate_DeletedCategory_Returns409(t *testing.T) {
	env := newTestEnv(t)
	root := createCategory(t, env, uniqName("Ephemeral"), nil)
	leaf := createCategory(t, env, "Short Lived", &root.ID)
	if err := env.Mut.Delete(context.Background(), leaf.ID, nil); err != nil {
		t.Fatalf("delete leaf: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parts",
		jsonBody(t, map[string]any{"name": uniqName("Too Late"), "category_id": leaf.ID}))
	rec := httptest.NewRecorder()
	env.PartH.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("Create in deleted category: got status %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestPartCreate_NegativeStock_Returns400(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, uniqName("Stockroom"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parts",
		jsonBody(t, map[string]any{"name": uniqName("Negative"), "category_id": cat.ID, "stock_level": -1}))
	rec := httptest.NewRecorder()
	env.PartH.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Create negative stock: got status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPartGet_Existing_Returns200(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, uniqName("Standoffs"), nil)
	part := createPart(t, env, uniqName("M3 Hex"), cat.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/parts/"+part.ID.String(), nil)
	req = withChiURLParam(req, "id", part.ID.String())
	rec := httptest.NewRecorder()
	env.PartH.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Get: got status %d, want %d", rec.Code, http.StatusOK)
	}
	var got models.Part
	decodeBody(t, rec, &got)
	if got.ID != part.ID {
		t.Errorf("Get: id = %v, want %v", got.ID, part.ID)
	}
}

func TestPartGet_Missing_Returns404(t *testing.T) {
	env := newTestEnv(t)

	fakeID := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parts/"+fakeID, nil)
	req = withChiURLParam(req, "id", fakeID)
	rec := httptest.NewRecorder()
	env.PartH.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Get missing: got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --- List ---

func TestPartList_CategoryAndSearchFilters(t *testing.T) {
	env := newTestEnv(t)
	catA := createCategory(t, env, uniqName("Logic"), nil)
	catB := createCategory(t, env, uniqName("Analog"), nil)
	marker := uniqName("NAND Gate")
	createPart(t, env, marker, catA.ID)
	createPart(t, env, uniqName("Op Amp"), catB.ID)

	// Category filter.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parts?category="+catA.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.PartH.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("List by category: got status %d, want %d", rec.Code, http.StatusOK)
	}
	var items []models.Part
	decodeBody(t, rec, &items)
	if len(items) != 1 || items[0].Name != marker {
		t.Fatalf("List by category: got %d items, want the one part in the category", len(items))
	}

	// Search filter matches case-insensitively on the generated suffix.
	q := url.QueryEscape(marker[len(marker)-12:])
	searchReq := httptest.NewRequest(http.MethodGet, "/api/v1/parts?q="+q, nil)
	searchRec := httptest.NewRecorder()
	env.PartH.List(searchRec, searchReq)
	var found []models.Part
	decodeBody(t, searchRec, &found)
	if len(found) != 1 || found[0].Name != marker {
		t.Errorf("List by search: got %d items, want just %q", len(found), marker)
	}
}

func TestPartList_LowStockFilter(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, uniqName("Reorder"), nil)

	low, err := env.Parts.Create(context.Background(), &models.Part{
		Name: uniqName("Running Out"), CategoryID: cat.ID, StockLevel: 2, MinStockLevel: 10,
	})
	if err != nil {
		t.Fatalf("create low part: %v", err)
	}
	if _, err := env.Parts.Create(context.Background(), &models.Part{
		Name: uniqName("Plenty"), CategoryID: cat.ID, StockLevel: 500, MinStockLevel: 10,
	}); err != nil {
		t.Fatalf("create stocked part: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/parts?low_stock=1&category="+cat.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.PartH.List(rec, req)

	var items []models.Part
	decodeBody(t, rec, &items)
	if len(items) != 1 || items[0].ID != low.ID {
		t.Errorf("List low stock: got %d items, want just the depleted part", len(items))
	}
}

// --- Update ---

func TestPartUpdate_PartialPatch_KeepsOtherFields(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, uniqName("Headers"), nil)
	part := createPart(t, env, uniqName("40 Pin"), cat.ID)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/parts/"+part.ID.String(),
		jsonBody(t, map[string]any{"stock_level": 77}))
	req = withChiURLParam(req, "id", part.ID.String())
	rec := httptest.NewRecorder()
	env.PartH.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Update: got status %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated models.Part
	decodeBody(t, rec, &updated)
	if updated.StockLevel != 77 {
		t.Errorf("Update: stock = %d, want 77", updated.StockLevel)
	}
	if updated.Name != part.Name || updated.CategoryID != part.CategoryID {
		t.Errorf("Update: untouched fields changed: %q / %v", updated.Name, updated.CategoryID)
	}
}

func TestPartUpdate_MoveToOtherCategory(t *testing.T) {
	env := newTestEnv(t)
	catA := createCategory(t, env, uniqName("Incoming"), nil)
	catB := createCategory(t, env, uniqName("Sorted"), nil)
	part := createPart(t, env, uniqName("Mystery IC"), catA.ID)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/parts/"+part.ID.String(),
		jsonBody(t, map[string]any{"category_id": catB.ID}))
	req = withChiURLParam(req, "id", part.ID.String())
	rec := httptest.NewRecorder()
	env.PartH.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Update move: got status %d, want %d", rec.Code, http.StatusOK)
	}
	var updated models.Part
	decodeBody(t, rec, &updated)
	if updated.CategoryID != catB.ID {
		t.Errorf("Update move: category = %v, want %v", updated.CategoryID, catB.ID)
	}
}

func TestPartUpdate_UnknownTargetCategory_Returns409(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, uniqName("Misc"), nil)
	part := createPart(t, env, uniqName("Widget"), cat.ID)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/parts/"+part.ID.String(),
		jsonBody(t, map[string]any{"category_id": uuid.New()}))
	req = withChiURLParam(req, "id", part.ID.String())
	rec := httptest.NewRecorder()
	env.PartH.Update(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("Update unknown category: got status %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestPartUpdate_Missing_Returns404(t *testing.T) {
	env := newTestEnv(t)

	fakeID := uuid.New().String()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/parts/"+fakeID,
		jsonBody(t, map[string]any{"name": "Nobody"}))
	req = withChiURLParam(req, "id", fakeID)
	rec := httptest.NewRecorder()
	env.PartH.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Update missing: got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --- Delete ---

func TestPartDelete_Existing_Returns204(t *testing.T) {
	env := newTestEnv(t)
	cat := createCategory(t, env, uniqName("Outgoing"), nil)
	part := createPart(t, env, uniqName("Obsolete"), cat.ID)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/parts/"+part.ID.String(), nil)
	req = withChiURLParam(req, "id", part.ID.String())
	rec := httptest.NewRecorder()
	env.PartH.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Delete: got status %d, want %d", rec.Code, http.StatusNoContent)
	}

	found, err := env.Parts.FindByID(context.Background(), part.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if found != nil {
		t.Error("Delete: part should be gone")
	}

	// The category is deletable again once its part is gone.
	if err := env.Mut.Delete(context.Background(), cat.ID, nil); err != nil {
		t.Errorf("category delete after part delete: %v", err)
	}
}

func TestPartDelete_Missing_Returns404(t *testing.T) {
	env := newTestEnv(t)

	fakeID := uuid.New().String()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/parts/"+fakeID, nil)
	req = withChiURLParam(req, "id", fakeID)
	rec := httptest.NewRecorder()
	env.PartH.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Delete missing: got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}
