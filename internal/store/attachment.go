// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"smartparts/internal/models"
)

// AttachmentStore manages part attachment metadata. The file bytes live in
// S3; rows here only carry the key and descriptive fields.
type AttachmentStore struct {
	db *sql.DB
}

// NewAttachmentStore returns a new AttachmentStore.
func NewAttachmentStore(db *sql.DB) *AttachmentStore {
	return &AttachmentStore{db: db}
}

const attachmentColumns = `id, part_id, file_name, original_name, content_type, size_bytes, s3_key, uploaded_by, created_at`

// scanAttachment scans a row into an Attachment struct.
func scanAttachment(scanner interface{ Scan(...any) error }) (*models.Attachment, error) {
	var a models.Attachment
	err := scanner.Scan(
		&a.ID, &a.PartID, &a.FileName, &a.OriginalName,
		&a.ContentType, &a.SizeBytes, &a.S3Key,
		&a.UploadedBy, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByPart returns a part's attachments, newest first.
func (s *AttachmentStore) ListByPart(ctx context.Context, partID uuid.UUID) ([]models.Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE part_id = $1 ORDER BY created_at DESC`,
		partID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var items []models.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// FindByID retrieves an attachment by ID. Returns nil if not found.
func (s *AttachmentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id)
	a, err := scanAttachment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attachment by id: %w", err)
	}
	return a, nil
}

// Create inserts attachment metadata after the object has been written to
// S3 and returns the stored row.
func (s *AttachmentStore) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO attachments (part_id, file_name, original_name, content_type, size_bytes, s3_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+attachmentColumns,
		a.PartID, a.FileName, a.OriginalName, a.ContentType, a.SizeBytes, a.S3Key, a.UploadedBy,
	)
	created, err := scanAttachment(row)
	if err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}
	return created, nil
}

// Delete removes an attachment row and returns it so the caller can clean
// up the S3 object. Returns nil if the attachment does not exist.
func (s *AttachmentStore) Delete(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	row := s.db.QueryRowContext(ctx,
		`DELETE FROM attachments WHERE id = $1 RETURNING `+attachmentColumns, id)
	a, err := scanAttachment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete attachment: %w", err)
	}
	return a, nil
}
