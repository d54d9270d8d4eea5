package server

import (
	"net/http"
	"strings"

	"github.com/web8-labs/ultrasearch/internal/engine/index"
	apperrors "github.com/web8-labs/ultrasearch/pkg/errors"
)

const (
	maxIDLength      = 256
	maxTitleLength   = 1024
	maxContentLength = 1 << 20
	maxURLLength     = 2048
	maxTags          = 32
)

// validateDocument rejects documents that cannot be indexed safely. The
// returned error carries an HTTP 400 status.
func validateDocument(doc index.Document) error {
	if strings.TrimSpace(doc.ID) == "" {
		return apperrors.New(apperrors.ErrInvalidDocument, http.StatusBadRequest, "document id is required")
	}
	if len(doc.ID) > maxIDLength {
		return apperrors.Newf(apperrors.ErrInvalidDocument, http.StatusBadRequest, "document id exceeds %d bytes", maxIDLength)
	}
	if strings.TrimSpace(doc.Title) == "" && strings.TrimSpace(doc.Content) == "" {
		return apperrors.New(apperrors.ErrInvalidDocument, http.StatusBadRequest, "document must have a title or content")
	}
	if len(doc.Title) > maxTitleLength {
		return apperrors.Newf(apperrors.ErrInvalidDocument, http.StatusBadRequest, "title exceeds %d bytes", maxTitleLength)
	}
	if len(doc.Content) > maxContentLength {
		return apperrors.Newf(apperrors.ErrInvalidDocument, http.StatusBadRequest, "content exceeds %d bytes", maxContentLength)
	}
	if len(doc.URL) > maxURLLength {
		return apperrors.Newf(apperrors.ErrInvalidDocument, http.StatusBadRequest, "url exceeds %d bytes", maxURLLength)
	}
	if doc.Type != "" && !doc.Type.Valid() {
		return apperrors.Newf(apperrors.ErrInvalidDocument, http.StatusBadRequest, "unknown document type %q", doc.Type)
	}
	if len(doc.Metadata.Tags) > maxTags {
		return apperrors.Newf(apperrors.ErrInvalidDocument, http.StatusBadRequest, "too many tags (max %d)", maxTags)
	}
	if doc.Metadata.Size < 0 {
		return apperrors.New(apperrors.ErrInvalidDocument, http.StatusBadRequest, "size must be non-negative")
	}
	return nil
}
