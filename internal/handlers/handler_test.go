// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL is unavailable;
// cache tests additionally need Valkey.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"smartparts/internal/cache"
	"smartparts/internal/database"
	"smartparts/internal/models"
	"smartparts/internal/store"
	"smartparts/internal/tree"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "smartparts")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "smartparts")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler cache tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "cattree:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests. Object
// storage is always nil here: the handlers must degrade cleanly without
// it, and that is the path these tests exercise.
type testEnv struct {
	DB          *sql.DB
	Cats        *store.CategoryStore
	Parts       *store.PartStore
	Attachments *store.AttachmentStore
	Fields      *store.CustomFieldStore
	Nav         *tree.Navigator
	Mut         *tree.Mutator
	TreeCache   *cache.TreeCache
	CategoryH   *Categories
	PartH       *Parts
	AttachmentH *Attachments
}

func buildEnv(t *testing.T, treeCache *cache.TreeCache) *testEnv {
	t.Helper()

	db := testDB(t)
	cats := store.NewCategoryStore(db)
	parts := store.NewPartStore(db)
	attachments := store.NewAttachmentStore(db)
	fields := store.NewCustomFieldStore(db)
	nav := tree.NewNavigator(cats)
	mut := tree.NewMutator(cats, nav, parts)

	return &testEnv{
		DB:          db,
		Cats:        cats,
		Parts:       parts,
		Attachments: attachments,
		Fields:      fields,
		Nav:         nav,
		Mut:         mut,
		TreeCache:   treeCache,
		CategoryH:   NewCategories(nav, mut, fields, parts, treeCache),
		PartH:       NewParts(parts, attachments, nil),
		AttachmentH: NewAttachments(parts, attachments, nil),
	}
}

// newTestEnv creates a test environment without a tree cache.
func newTestEnv(t *testing.T) *testEnv {
	return buildEnv(t, nil)
}

// newTestEnvWithCache creates a test environment with a Valkey-backed
// tree cache. Skips when Valkey is unreachable.
func newTestEnvWithCache(t *testing.T) *testEnv {
	vk := testValkeyClient(t)
	return buildEnv(t, cache.NewTreeCache(vk, 1*time.Minute))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func uniqName(prefix string) string {
	return prefix + " " + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// cleanCategoryTree removes a root category, its whole subtree, and the
// parts inside it. Resolves the path at cleanup time because renames and
// moves shift it during the test.
func cleanCategoryTree(t *testing.T, db *sql.DB, rootID uuid.UUID) {
	t.Helper()
	var path string
	if err := db.QueryRow(`SELECT path FROM categories WHERE id = $1`, rootID).Scan(&path); err != nil {
		return
	}
	pattern := likeEscaper.Replace(path) + ".%"
	db.Exec(`DELETE FROM parts WHERE category_id IN
		(SELECT id FROM categories WHERE path = $1 OR path LIKE $2)`, path, pattern)
	db.Exec(`DELETE FROM categories WHERE path = $1 OR path LIKE $2`, path, pattern)
}

// createCategory makes a category through the mutator and registers
// cleanup for roots.
func createCategory(t *testing.T, env *testEnv, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	c, err := env.Mut.Create(context.Background(), &models.Category{
		Name:     name,
		ParentID: parentID,
		IsPublic: true,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	if parentID == nil {
		t.Cleanup(func() { cleanCategoryTree(t, env.DB, c.ID) })
	}
	return c
}

// createPart makes a part directly through the store. Parts are cleaned
// up together with the category tree they live in.
func createPart(t *testing.T, env *testEnv, name string, categoryID uuid.UUID) *models.Part {
	t.Helper()
	p, err := env.Parts.Create(context.Background(), &models.Part{
		Name:       name,
		CategoryID: categoryID,
		StockLevel: 10,
	})
	if err != nil {
		t.Fatalf("create part %q: %v", name, err)
	}
	return p
}

// jsonBody encodes v for use as a request body.
func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

// decodeBody decodes a recorded JSON response into dst.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// errorCode extracts the error code from a recorded JSON error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error.Code
}
