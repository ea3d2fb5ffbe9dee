package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lessonforge/lessonforge/internal/api"
	"github.com/lessonforge/lessonforge/internal/service"
)

type PromptBuildService interface {
	BuildPromptForTopic(ctx context.Context, topicID int64, ownerID, userName, userLevel string, topK int) (*service.PromptResult, error)
}

type PromptExecService interface {
	Execute(ctx context.Context, topicID int64, ownerID, userName, userLevel string, topK int) (*service.PromptExecutionResult, error)
}

type PromptHandler struct {
	builder  PromptBuildService
	executor PromptExecService
}

func NewPromptHandler(builder PromptBuildService, executor PromptExecService) *PromptHandler {
	return &PromptHandler{builder: builder, executor: executor}
}

type PromptRequest struct {
	UserName  string `json:"user_name"`
	UserLevel string `json:"user_level"`
	TopK      int    `json:"top_k"`
}

type PromptReferenceResponse struct {
	ChunkID   string  `json:"chunk_id"`
	RawText   string  `json:"raw_text"`
	Relevance float64 `json:"relevance"`
}

type PromptResponse struct {
	CourseID    int64                     `json:"course_id"`
	CourseTitle string                    `json:"course_title"`
	TopicID     int64                     `json:"topic_id"`
	TopicTitle  string                    `json:"topic_title"`
	TopicSource string                    `json:"topic_source"`
	Prompt      string                    `json:"prompt"`
	References  []PromptReferenceResponse `json:"references"`
}

type PromptExecutionResponse struct {
	PromptResponse
	Response string `json:"response"`
}

func promptToResponse(result *service.PromptResult) PromptResponse {
	resp := PromptResponse{
		CourseID:    result.CourseID,
		CourseTitle: result.CourseTitle,
		TopicID:     result.TopicID,
		TopicTitle:  result.TopicTitle,
		TopicSource: result.TopicSource,
		Prompt:      result.Prompt,
		References:  make([]PromptReferenceResponse, 0, len(result.References)),
	}
	for _, ref := range result.References {
		resp.References = append(resp.References, PromptReferenceResponse{
			ChunkID:   ref.ChunkID,
			RawText:   ref.RawText,
			Relevance: ref.Relevance,
		})
	}
	return resp
}

// Build assembles the lesson prompt for a topic without executing it.
func (h *PromptHandler) Build(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := callerAndID(w, r, "invalid topic id")
	if !ok {
		return
	}

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.builder.BuildPromptForTopic(r.Context(), topicID, userID, req.UserName, req.UserLevel, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, promptToResponse(result))
}

// Execute assembles the lesson prompt and runs it through the chat model.
func (h *PromptHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := callerAndID(w, r, "invalid topic id")
	if !ok {
		return
	}

	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.executor.Execute(r.Context(), topicID, userID, req.UserName, req.UserLevel, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, PromptExecutionResponse{
		PromptResponse: promptToResponse(&result.PromptResult),
		Response:       result.Response,
	})
}
