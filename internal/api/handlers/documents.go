// Package handlers contains the HTTP handlers for the ingestion and
// retrieval surface.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lessonforge/lessonforge/internal/api"
	"github.com/lessonforge/lessonforge/internal/api/middleware"
	"github.com/lessonforge/lessonforge/internal/domain"
)

type DocumentProcessingService interface {
	ProcessDocument(ctx context.Context, documentID int64) error
	ResetToPending(ctx context.Context, documentID int64) error
}

type DocumentReader interface {
	GetWithCourse(ctx context.Context, id int64) (*domain.Document, error)
}

type DocumentHandler struct {
	svc       DocumentProcessingService
	documents DocumentReader
}

func NewDocumentHandler(svc DocumentProcessingService, documents DocumentReader) *DocumentHandler {
	return &DocumentHandler{svc: svc, documents: documents}
}

type DocumentResponse struct {
	ID           int64  `json:"id"`
	CourseID     int64  `json:"course_id"`
	FileName     string `json:"file_name"`
	Status       string `json:"status"`
	UploadedAt   string `json:"uploaded_at"`
	ProcessedAt  string `json:"processed_at,omitempty"`
	FailedReason string `json:"failed_reason,omitempty"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	resp := &DocumentResponse{
		ID:           d.ID,
		CourseID:     d.CourseID,
		FileName:     d.FileName,
		Status:       string(d.Status),
		UploadedAt:   d.UploadedAt.Format("2006-01-02T15:04:05Z"),
		FailedReason: d.FailedReason,
	}
	if d.ProcessedAt != nil {
		resp.ProcessedAt = d.ProcessedAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// Get returns the document's processing status.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

// Process runs the ingestion pipeline for the document and returns its
// resulting status.
func (h *DocumentHandler) Process(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	if err := h.svc.ProcessDocument(r.Context(), doc.ID); err != nil {
		api.HandleError(w, err)
		return
	}

	updated, err := h.documents.GetWithCourse(r.Context(), doc.ID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(updated))
}

// Reset moves a document stuck in Processing back to Pending.
func (h *DocumentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	if err := h.svc.ResetToPending(r.Context(), doc.ID); err != nil {
		api.HandleError(w, err)
		return
	}

	updated, err := h.documents.GetWithCourse(r.Context(), doc.ID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(updated))
}

func (h *DocumentHandler) ownedDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid document id")
		return nil, false
	}

	doc, err := h.documents.GetWithCourse(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return nil, false
	}
	if doc.Course == nil || doc.Course.OwnerID != userID {
		api.HandleError(w, domain.ErrNotCourseOwner)
		return nil, false
	}
	return doc, true
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
