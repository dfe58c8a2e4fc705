// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a file stored in S3 and linked to a part: a datasheet,
// footprint drawing, or photo. The S3 object itself is private; clients
// fetch it through short-lived presigned URLs.
type Attachment struct {
	ID           uuid.UUID  `json:"id"`
	PartID       uuid.UUID  `json:"part_id"`
	FileName     string     `json:"file_name"`
	OriginalName string     `json:"original_name"`
	ContentType  string     `json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	S3Key        string     `json:"-"`
	UploadedBy   *uuid.UUID `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
