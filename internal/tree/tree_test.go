// tree_test.go provides shared helpers for the tree engine integration
// tests. Tests are skipped if PostgreSQL is not available.
package tree

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"smartparts/internal/database"
	"smartparts/internal/models"
	"smartparts/internal/store"
)

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "smartparts")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "smartparts")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testEngine bundles a navigator and mutator wired against the test
// database, with the part store registered as the reference checker the
// way main wires it.
type testEngine struct {
	db    *sql.DB
	cats  *store.CategoryStore
	parts *store.PartStore
	nav   *Navigator
	mut   *Mutator
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	db := testDB(t)
	cats := store.NewCategoryStore(db)
	parts := store.NewPartStore(db)
	nav := NewNavigator(cats)
	return &testEngine{
		db:    db,
		cats:  cats,
		parts: parts,
		nav:   nav,
		mut:   NewMutator(cats, nav, parts),
	}
}

func uniqName(prefix string) string {
	return prefix + " " + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// expectedLabel mirrors what the sanitizer produces for the simple fixture
// names used here.
func expectedLabel(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

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

// create makes a category through the mutator and registers cleanup for
// roots.
func (e *testEngine) create(t *testing.T, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	c, err := e.mut.Create(context.Background(), &models.Category{
		Name:     name,
		ParentID: parentID,
		IsPublic: true,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	if parentID == nil {
		t.Cleanup(func() { cleanCategoryTree(t, e.db, c.ID) })
	}
	return c
}
