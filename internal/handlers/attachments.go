package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartparts/internal/models"
	"smartparts/internal/storage"
	"smartparts/internal/store"
)

const (
	// maxUploadSize is the maximum allowed attachment size (50 MB).
	maxUploadSize = 50 << 20

	// presignExpiry is how long a presigned attachment URL is valid.
	presignExpiry = 1 * time.Hour
)

// allowedAttachmentTypes defines MIME types accepted for upload:
// datasheets, drawings, and part photos.
var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// Attachments groups the part attachment endpoints. Objects live in a
// private bucket; clients reach them only through presigned URLs. storage
// may be nil when S3 is not configured: uploads and downloads then return
// 503, listings still return metadata, deletes still remove the row.
type Attachments struct {
	parts       *store.PartStore
	attachments *store.AttachmentStore
	storage     *storage.Client
}

func NewAttachments(parts *store.PartStore, attachments *store.AttachmentStore, st *storage.Client) *Attachments {
	return &Attachments{parts: parts, attachments: attachments, storage: st}
}

// attachmentView is an attachment plus its presigned URL. The URL is
// omitted when object storage is unavailable.
type attachmentView struct {
	models.Attachment
	URL string `json:"url,omitempty"`
}

// Upload handles multipart attachment upload to S3.
func (h *Attachments) Upload(w http.ResponseWriter, r *http.Request) {
	partID, ok := idParam(w, r)
	if !ok {
		return
	}
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "Object storage is not configured.")
		return
	}
	p, err := h.parts.FindByID(r.Context(), partID)
	if err != nil {
		slog.Error("get part failed", "error", err, "part", partID)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "part not found")
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", "File too large. Maximum size is 50 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_upload", "No file provided.")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", "File too large. Maximum size is 50 MB.")
		return
	}

	var uploadedBy *uuid.UUID
	if v := r.FormValue("uploaded_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation", "uploaded_by must be a UUID")
			return
		}
		uploadedBy = &id
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		writeError(w, http.StatusInternalServerError, "internal", "Failed to read file.")
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	// SVG detection: DetectContentType returns text/xml or application/xml for SVGs.
	if strings.HasSuffix(strings.ToLower(header.Filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}

	if !allowedAttachmentTypes[contentType] {
		writeError(w, http.StatusBadRequest, "unsupported_type", fmt.Sprintf("File type %q is not allowed.", contentType))
		return
	}

	// Seek back to start after sniffing.
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "Failed to process file.")
		return
	}

	// Generate a unique storage key under the part's prefix.
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	fileID := uuid.New()
	s3Key := fmt.Sprintf("attachments/%s/%s%s", partID, fileID, ext)

	ctx := r.Context()
	if err := h.storage.Upload(ctx, s3Key, contentType, file, header.Size); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", s3Key)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to upload file.")
		return
	}

	created, err := h.attachments.Create(ctx, &models.Attachment{
		PartID:       partID,
		FileName:     fileID.String() + ext,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    header.Size,
		S3Key:        s3Key,
		UploadedBy:   uploadedBy,
	})
	if err != nil {
		slog.Error("attachment db insert failed", "error", err, "key", s3Key)
		// The object is orphaned without its row; clean it up best-effort.
		if delErr := h.storage.Delete(ctx, s3Key); delErr != nil {
			slog.Warn("orphaned object cleanup failed", "error", delErr, "key", s3Key)
		}
		writeError(w, http.StatusInternalServerError, "internal", "Failed to save file metadata.")
		return
	}

	view := attachmentView{Attachment: *created}
	if url, err := h.storage.PresignedURL(ctx, created.S3Key, presignExpiry); err != nil {
		slog.Warn("presign failed", "error", err, "key", created.S3Key)
	} else {
		view.URL = url
	}
	writeJSON(w, http.StatusCreated, view)
}

// List returns a part's attachments with presigned URLs.
func (h *Attachments) List(w http.ResponseWriter, r *http.Request) {
	partID, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.parts.FindByID(r.Context(), partID)
	if err != nil {
		slog.Error("get part failed", "error", err, "part", partID)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", "part not found")
		return
	}

	items, err := h.attachments.ListByPart(r.Context(), partID)
	if err != nil {
		slog.Error("list attachments failed", "error", err, "part", partID)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	views := make([]attachmentView, 0, len(items))
	for _, a := range items {
		view := attachmentView{Attachment: a}
		if h.storage != nil {
			if url, err := h.storage.PresignedURL(r.Context(), a.S3Key, presignExpiry); err != nil {
				slog.Warn("presign failed", "error", err, "key", a.S3Key)
			} else {
				view.URL = url
			}
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

// Download redirects to a time-limited presigned URL for the object.
func (h *Attachments) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	a, err := h.attachments.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("attachment lookup failed", "error", err, "attachment", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "not_found", "attachment not found")
		return
	}
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "Object storage is not configured.")
		return
	}

	presigned, err := h.storage.PresignedURL(r.Context(), a.S3Key, presignExpiry)
	if err != nil {
		slog.Error("presign failed", "error", err, "key", a.S3Key)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	http.Redirect(w, r, presigned, http.StatusFound)
}

// Delete removes an attachment from both the database and S3. The row
// goes first so the metadata never outlives a missing object; the S3
// delete is best-effort.
func (h *Attachments) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.attachments.Delete(r.Context(), id)
	if err != nil {
		slog.Error("attachment db delete failed", "error", err, "attachment", id)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "not_found", "attachment not found")
		return
	}

	if h.storage != nil {
		if err := h.storage.Delete(r.Context(), deleted.S3Key); err != nil {
			slog.Warn("s3 object delete failed", "error", err, "key", deleted.S3Key)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
