// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"smartparts/internal/label"
	"smartparts/internal/models"
	"smartparts/internal/treepath"
)

// CategoryStore manages the category tree in the database. Structural
// mutations (create, rename, move, delete) run in transactions serialized
// by an advisory lock; reads are lock-free and only ever see committed
// trees.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// treeMutationLockID is the pg_advisory_xact_lock key taken by every
// structural tree mutation. Serializing writers keeps path rewrites from
// interleaving; the unique index on path stays the final authority for
// anything that bypasses the lock.
const treeMutationLockID = 1

func lockTree(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, treeMutationLockID); err != nil {
		return fmt.Errorf("acquire tree mutation lock: %w", err)
	}
	return nil
}

const categoryColumns = `id, name, path, description, parent_id, is_public, is_deleted, created_by, created_at, updated_by, updated_at, deleted_by, deleted_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Path, &c.Description,
		&c.ParentID, &c.IsPublic, &c.IsDeleted,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedBy, &c.UpdatedAt,
		&c.DeletedBy, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// likeEscaper neutralizes LIKE wildcards in a path before prefix matching.
// '_' is both a label character and a single-character wildcard, so every
// path with an underscore would otherwise over-match. Backslash is LIKE's
// default escape character in PostgreSQL.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// subtreePattern returns the LIKE pattern matching every proper descendant
// path of path.
func subtreePattern(path string) string {
	return likeEscaper.Replace(path) + treepath.Separator + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CategoryFilter narrows List. The zero value lists every live category.
type CategoryFilter struct {
	ParentID   *uuid.UUID // direct children of this parent
	RootsOnly  bool       // only categories without a parent
	PublicOnly bool
	CreatedBy  *uuid.UUID
}

// List returns live categories ordered by path, with part counts. Path
// order places every category immediately after its ancestors, so the flat
// list reads as a depth-first walk of the tree.
func (s *CategoryStore) List(ctx context.Context, f CategoryFilter) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.path, c.description, c.parent_id, c.is_public, c.is_deleted,
		       c.created_by, c.created_at, c.updated_by, c.updated_at, c.deleted_by, c.deleted_at,
		       COUNT(p.id) AS part_count
		FROM categories c
		LEFT JOIN parts p ON p.category_id = c.id
		WHERE NOT c.is_deleted
		  AND ($1::uuid IS NULL OR c.parent_id = $1)
		  AND (NOT $2::bool OR c.parent_id IS NULL)
		  AND (NOT $3::bool OR c.is_public)
		  AND ($4::uuid IS NULL OR c.created_by = $4)
		GROUP BY c.id
		ORDER BY c.path
	`, f.ParentID, f.RootsOnly, f.PublicOnly, f.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Path, &c.Description,
			&c.ParentID, &c.IsPublic, &c.IsDeleted,
			&c.CreatedBy, &c.CreatedAt, &c.UpdatedBy, &c.UpdatedAt,
			&c.DeletedBy, &c.DeletedAt,
			&c.PartCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a live category by ID. Returns nil if the category
// does not exist or is soft-deleted.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND NOT is_deleted`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByPaths retrieves the live categories at the given paths, ordered by
// path. Ancestor paths are prefixes of their descendants and prefixes sort
// first, so passing a node's ancestor chain returns it root-first.
func (s *CategoryStore) FindByPaths(ctx context.Context, paths []string) ([]models.Category, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(paths))
	args := make([]any, len(paths))
	for i, p := range paths {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = p
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE NOT is_deleted AND path IN (`+strings.Join(placeholders, ", ")+`)
		 ORDER BY path`, args...)
	if err != nil {
		return nil, fmt.Errorf("find categories by paths: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListChildren returns the live direct children of a category, ordered by
// path.
func (s *CategoryStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE parent_id = $1 AND NOT is_deleted
		 ORDER BY path`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Descendants returns every live category strictly below the given path,
// ordered by path. Because the separator sorts before every label
// character, path order is exactly a pre-order walk of the subtree.
func (s *CategoryStore) Descendants(ctx context.Context, path string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE NOT is_deleted AND path LIKE $1
		 ORDER BY path`, subtreePattern(path))
	if err != nil {
		return nil, fmt.Errorf("list descendants: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// HasLiveChildren reports whether any live category still references id as
// its parent.
func (s *CategoryStore) HasLiveChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1 AND NOT is_deleted)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check children: %w", err)
	}
	return exists, nil
}

// Create inserts a new category under the given parent and returns it with
// its computed path. Fails with models.ErrInvalidParent when the parent is
// missing or deleted, models.ErrDuplicateName when a live sibling already
// owns the same label, and models.ErrEmptyName when the name sanitizes to
// nothing.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	lbl := label.Sanitize(c.Name)
	if lbl == "" {
		return nil, models.ErrEmptyName
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockTree(ctx, tx); err != nil {
		return nil, err
	}

	parentPath := ""
	if c.ParentID != nil {
		err := tx.QueryRowContext(ctx,
			`SELECT path FROM categories WHERE id = $1 AND NOT is_deleted`, *c.ParentID,
		).Scan(&parentPath)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrInvalidParent
		}
		if err != nil {
			return nil, fmt.Errorf("resolve parent: %w", err)
		}
	}
	newPath := treepath.Join(parentPath, lbl)

	var taken bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE path = $1 AND NOT is_deleted)`, newPath,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("check sibling label: %w", err)
	}
	if taken {
		return nil, models.ErrDuplicateName
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO categories (name, path, description, parent_id, is_public, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+categoryColumns,
		c.Name, newPath, c.Description, c.ParentID, c.IsPublic, c.CreatedBy,
	)
	created, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateName
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return created, nil
}

// CategoryUpdate carries the fields Update may change. Nil fields are left
// as they are.
type CategoryUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
	UpdatedBy   *uuid.UUID
}

// Update modifies a category. A name change that alters the sanitized
// label relocates the whole subtree: the category's own path is rebuilt
// from its parent path and the new label, and every descendant path is
// rewritten by prefix substitution in the same transaction.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, u CategoryUpdate) (*models.Category, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockTree(ctx, tx); err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND NOT is_deleted`, id)
	cur, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}

	name := cur.Name
	newPath := cur.Path
	if u.Name != nil {
		name = *u.Name
		lbl := label.Sanitize(name)
		if lbl == "" {
			return nil, models.ErrEmptyName
		}
		newPath = treepath.Join(treepath.Parent(cur.Path), lbl)
	}
	description := cur.Description
	if u.Description != nil {
		description = *u.Description
	}
	isPublic := cur.IsPublic
	if u.IsPublic != nil {
		isPublic = *u.IsPublic
	}

	if newPath != cur.Path {
		var taken bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE path = $1 AND NOT is_deleted AND id <> $2)`,
			newPath, id,
		).Scan(&taken)
		if err != nil {
			return nil, fmt.Errorf("check sibling label: %w", err)
		}
		if taken {
			return nil, models.ErrDuplicateName
		}
	}

	row = tx.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $1, path = $2, description = $3, is_public = $4, updated_by = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+categoryColumns,
		name, newPath, description, isPublic, u.UpdatedBy, id,
	)
	updated, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateName
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	if newPath != cur.Path {
		// Soft-deleted descendants are rewritten too so their paths stay
		// consistent if they are ever surfaced again.
		_, err = tx.ExecContext(ctx, `
			UPDATE categories
			SET path = $1 || substr(path, char_length($2) + 1)
			WHERE path LIKE $3`,
			newPath, cur.Path, subtreePattern(cur.Path),
		)
		if err != nil {
			return nil, fmt.Errorf("rewrite descendant paths: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

// MoveSubtree reparents a category and relocates its entire subtree in one
// transaction. The moved category's path is rebuilt under the new parent
// and every descendant path is rewritten by substituting the old prefix,
// so no request ever observes a half-moved subtree.
//
// Fails with models.ErrCategoryNotFound when id is missing or deleted,
// models.ErrInvalidParent when the target parent is, and
// models.ErrCircularReference when the target parent is the category
// itself or anything inside its subtree. A label collision among the new
// siblings fails with models.ErrDuplicateName.
func (s *CategoryStore) MoveSubtree(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID, actor *uuid.UUID) (*models.Category, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockTree(ctx, tx); err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND NOT is_deleted`, id)
	cur, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}

	parentPath := ""
	if newParentID != nil {
		if *newParentID == cur.ID {
			return nil, models.ErrCircularReference
		}
		err := tx.QueryRowContext(ctx,
			`SELECT path FROM categories WHERE id = $1 AND NOT is_deleted`, *newParentID,
		).Scan(&parentPath)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrInvalidParent
		}
		if err != nil {
			return nil, fmt.Errorf("resolve new parent: %w", err)
		}
		if treepath.IsDescendant(cur.Path, parentPath) {
			return nil, models.ErrCircularReference
		}
	}

	newPath := treepath.Join(parentPath, label.Sanitize(cur.Name))
	if newPath == cur.Path {
		// Same parent, nothing moves.
		return cur, nil
	}

	var taken bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE path = $1 AND NOT is_deleted AND id <> $2)`,
		newPath, id,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("check sibling label: %w", err)
	}
	if taken {
		return nil, models.ErrDuplicateName
	}

	row = tx.QueryRowContext(ctx, `
		UPDATE categories
		SET parent_id = $1, path = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+categoryColumns,
		newParentID, newPath, actor, id,
	)
	moved, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateName
		}
		return nil, fmt.Errorf("move category: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE categories
		SET path = $1 || substr(path, char_length($2) + 1)
		WHERE path LIKE $3`,
		newPath, cur.Path, subtreePattern(cur.Path),
	)
	if err != nil {
		return nil, fmt.Errorf("rewrite descendant paths: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit move: %w", err)
	}
	return moved, nil
}

// SoftDelete marks a category deleted without touching its row's path or
// its descendants. Fails with models.ErrCategoryNotFound when the category
// is missing or already deleted and models.ErrHasChildren while live
// children remain. External references (parts) are checked by the caller
// before this runs.
func (s *CategoryStore) SoftDelete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockTree(ctx, tx); err != nil {
		return err
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND NOT is_deleted)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if !exists {
		return models.ErrCategoryNotFound
	}

	var hasChildren bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1 AND NOT is_deleted)`, id,
	).Scan(&hasChildren)
	if err != nil {
		return fmt.Errorf("check children: %w", err)
	}
	if hasChildren {
		return models.ErrHasChildren
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE categories
		SET is_deleted = TRUE, deleted_by = $2, deleted_at = NOW()
		WHERE id = $1`, id, actor,
	)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}
