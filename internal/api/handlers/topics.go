package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lessonforge/lessonforge/internal/api"
	"github.com/lessonforge/lessonforge/internal/api/middleware"
	"github.com/lessonforge/lessonforge/internal/domain"
)

type TopicManagementService interface {
	GenerateTopics(ctx context.Context, courseID int64, ownerID string) ([]*domain.Topic, error)
	CreateManualTopic(ctx context.Context, courseID int64, ownerID, title string) (*domain.Topic, error)
	SetTopicSelection(ctx context.Context, topicID int64, ownerID string, selected bool) (*domain.Topic, error)
	DeleteTopic(ctx context.Context, topicID int64, ownerID string) error
	ListTopics(ctx context.Context, courseID int64, ownerID string) ([]*domain.Topic, error)
}

type TopicHandler struct {
	svc TopicManagementService
}

func NewTopicHandler(svc TopicManagementService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

type CreateTopicRequest struct {
	Title string `json:"title"`
}

type SetSelectionRequest struct {
	Selected bool `json:"selected"`
}

type TopicResponse struct {
	ID         int64                `json:"id"`
	CourseID   int64                `json:"course_id"`
	Title      string               `json:"title"`
	Source     string               `json:"source"`
	IsManual   bool                 `json:"is_manual"`
	IsSelected bool                 `json:"is_selected"`
	Confidence float64              `json:"confidence"`
	Order      int                  `json:"order"`
	Chunks     []TopicChunkResponse `json:"chunks,omitempty"`
}

type TopicChunkResponse struct {
	ChunkID   string  `json:"chunk_id"`
	Relevance float64 `json:"relevance"`
	Order     int     `json:"order"`
}

func topicToResponse(t *domain.Topic) *TopicResponse {
	resp := &TopicResponse{
		ID:         t.ID,
		CourseID:   t.CourseID,
		Title:      t.Title,
		Source:     t.Source,
		IsManual:   t.IsManual,
		IsSelected: t.IsSelected,
		Confidence: t.Confidence,
		Order:      t.Order,
	}
	for _, c := range t.Chunks {
		resp.Chunks = append(resp.Chunks, TopicChunkResponse{
			ChunkID:   c.ChunkID,
			Relevance: c.Relevance,
			Order:     c.Order,
		})
	}
	return resp
}

func topicsToResponse(topics []*domain.Topic) []*TopicResponse {
	responses := make([]*TopicResponse, len(topics))
	for i, t := range topics {
		responses[i] = topicToResponse(t)
	}
	return responses
}

// Generate runs topic extraction for the course and returns the
// persisted topics.
func (h *TopicHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := callerAndID(w, r, "invalid course id")
	if !ok {
		return
	}

	topics, err := h.svc.GenerateTopics(r.Context(), courseID, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, topicsToResponse(topics))
}

// List returns the course's topics.
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := callerAndID(w, r, "invalid course id")
	if !ok {
		return
	}

	topics, err := h.svc.ListTopics(r.Context(), courseID, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, topicsToResponse(topics))
}

// Create adds a manual topic to the course.
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, courseID, ok := callerAndID(w, r, "invalid course id")
	if !ok {
		return
	}

	var req CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	topic, err := h.svc.CreateManualTopic(r.Context(), courseID, userID, req.Title)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, topicToResponse(topic))
}

// SetSelection toggles whether a topic is part of the study set.
func (h *TopicHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := callerAndID(w, r, "invalid topic id")
	if !ok {
		return
	}

	var req SetSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	topic, err := h.svc.SetTopicSelection(r.Context(), topicID, userID, req.Selected)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, topicToResponse(topic))
}

// Delete removes a topic from the course.
func (h *TopicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := callerAndID(w, r, "invalid topic id")
	if !ok {
		return
	}

	if err := h.svc.DeleteTopic(r.Context(), topicID, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// callerAndID pulls the caller identity from context and the {id} route
// parameter, writing the error response itself when either is missing.
func callerAndID(w http.ResponseWriter, r *http.Request, badIDMessage string) (string, int64, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return "", 0, false
	}

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, badIDMessage)
		return "", 0, false
	}
	return userID, id, true
}
