package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lessonforge/lessonforge/internal/api"
	"github.com/lessonforge/lessonforge/internal/api/middleware"
	"github.com/lessonforge/lessonforge/internal/vectorstore"
)

type CourseSearchService interface {
	Search(ctx context.Context, courseID int64, ownerID, query string, topK int) ([]vectorstore.SearchResult, error)
}

type SearchHandler struct {
	svc CourseSearchService
}

func NewSearchHandler(svc CourseSearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	CourseID int64  `json:"course_id"`
	Query    string `json:"query"`
	TopK     int    `json:"top_k"`
}

type SearchResultResponse struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID int64   `json:"document_id"`
	OrderIndex int     `json:"order_index"`
	RawText    string  `json:"raw_text"`
	Score      float32 `json:"score"`
}

type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
}

// Search runs semantic search over one course's indexed content.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CourseID == 0 {
		api.Error(w, http.StatusBadRequest, "course_id is required")
		return
	}

	results, err := h.svc.Search(r.Context(), req.CourseID, userID, req.Query, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := SearchResponse{Results: make([]SearchResultResponse, 0, len(results))}
	for _, result := range results {
		resp.Results = append(resp.Results, SearchResultResponse{
			ChunkID:    result.ChunkID,
			DocumentID: result.DocumentID,
			OrderIndex: result.OrderIndex,
			RawText:    result.RawText,
			Score:      result.Score,
		})
	}

	api.Success(w, http.StatusOK, resp)
}
