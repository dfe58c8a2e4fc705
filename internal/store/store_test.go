// store_test.go provides shared test database helpers for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

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
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
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

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// uniqName builds a fixture name that sanitizes to a label no other test
// run can collide with.
func uniqName(prefix string) string {
	return prefix + " " + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// cleanCategoryTree removes a test root and everything currently inside
// its subtree, parts included. It resolves the root's path at cleanup time
// so renames and moves during the test don't strand rows.
func cleanCategoryTree(t *testing.T, db *sql.DB, rootID uuid.UUID) {
	t.Helper()
	var path string
	if err := db.QueryRow(`SELECT path FROM categories WHERE id = $1`, rootID).Scan(&path); err != nil {
		return
	}
	pattern := subtreePattern(path)
	db.Exec(`DELETE FROM parts WHERE category_id IN
		(SELECT id FROM categories WHERE path = $1 OR path LIKE $2)`, path, pattern)
	db.Exec(`DELETE FROM categories WHERE path = $1 OR path LIKE $2`, path, pattern)
}

// createTestCategory creates a category through the store and, for roots,
// registers subtree cleanup.
func createTestCategory(t *testing.T, s *CategoryStore, db *sql.DB, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	c, err := s.Create(context.Background(), &models.Category{
		Name:     name,
		ParentID: parentID,
		IsPublic: true,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	if parentID == nil {
		t.Cleanup(func() { cleanCategoryTree(t, db, c.ID) })
	}
	return c
}
