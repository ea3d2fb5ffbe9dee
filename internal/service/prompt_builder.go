package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lessonforge/lessonforge/internal/domain"
	"github.com/lessonforge/lessonforge/internal/vectorstore"
)

const maxSnippetRunes = 600

// PromptRequest carries everything the builder needs to assemble a
// lesson prompt for one topic.
type PromptRequest struct {
	Course    *domain.Course
	Topic     *domain.Topic
	UserName  string
	UserLevel string
	TopK      int
}

// PromptReference is one content snippet cited by the assembled prompt,
// in the order it appears there.
type PromptReference struct {
	ChunkID   string
	RawText   string
	Relevance float64
}

// PromptResult is the assembled lesson prompt plus the context it was
// built from.
type PromptResult struct {
	CourseID          int64
	CourseTitle       string
	CourseDescription string
	TopicID           int64
	TopicTitle        string
	TopicSource       string
	Prompt            string
	References        []PromptReference
}

// VectorSearcherInterface is the retrieval slice of the vector store the
// builder uses to top up references.
type VectorSearcherInterface interface {
	Search(ctx context.Context, courseID int64, query string, topK int) ([]vectorstore.SearchResult, error)
}

// StructuredPromptBuilder assembles lesson prompts from a topic's linked
// chunks, topped up by a single vector search when the links alone do
// not reach the requested reference count.
type StructuredPromptBuilder struct {
	searcher VectorSearcherInterface
}

// NewStructuredPromptBuilder creates a new StructuredPromptBuilder instance
func NewStructuredPromptBuilder(searcher VectorSearcherInterface) *StructuredPromptBuilder {
	return &StructuredPromptBuilder{searcher: searcher}
}

// Build assembles the prompt. References come from the topic's linked
// chunks in stored order; if fewer than TopK exist, one search against
// the topic title fills the remainder.
func (b *StructuredPromptBuilder) Build(ctx context.Context, req PromptRequest) (*PromptResult, error) {
	references := make([]PromptReference, 0, req.TopK)
	for _, link := range req.Topic.Chunks {
		references = append(references, PromptReference{
			ChunkID:   link.ChunkID,
			RawText:   link.RawText,
			Relevance: link.Relevance,
		})
	}

	if remaining := req.TopK - len(references); remaining > 0 {
		results, err := b.searcher.Search(ctx, req.Course.ID, req.Topic.Title, remaining)
		if err != nil {
			return nil, fmt.Errorf("searching course content for topic %d: %w", req.Topic.ID, err)
		}
		for _, result := range results {
			references = append(references, PromptReference{
				ChunkID:   result.ChunkID,
				RawText:   result.RawText,
				Relevance: float64(result.Score),
			})
		}
	}

	return &PromptResult{
		CourseID:          req.Course.ID,
		CourseTitle:       req.Course.Title,
		CourseDescription: req.Course.Description,
		TopicID:           req.Topic.ID,
		TopicTitle:        req.Topic.Title,
		TopicSource:       req.Topic.Source,
		Prompt:            renderPrompt(req, references),
		References:        references,
	}, nil
}

func renderPrompt(req PromptRequest, references []PromptReference) string {
	var sb strings.Builder

	sb.WriteString("You are an expert instructor creating a personalized lesson for the learner.\n")
	sb.WriteString("Use only the provided course content and follow the teaching guidelines.\n\n")

	fmt.Fprintf(&sb, "Course Title: %s\n", req.Course.Title)
	if strings.TrimSpace(req.Course.Description) != "" {
		fmt.Fprintf(&sb, "Course Summary: %s\n", req.Course.Description)
	}
	fmt.Fprintf(&sb, "Focus Topic: %s\n", req.Topic.Title)
	if strings.TrimSpace(req.Topic.Source) != "" {
		fmt.Fprintf(&sb, "Topic Source: %s\n", req.Topic.Source)
	}

	if strings.TrimSpace(req.UserName) != "" || strings.TrimSpace(req.UserLevel) != "" {
		sb.WriteString("\nLearner Profile:\n")
		if strings.TrimSpace(req.UserName) != "" {
			fmt.Fprintf(&sb, "- Name: %s\n", req.UserName)
		}
		if strings.TrimSpace(req.UserLevel) != "" {
			fmt.Fprintf(&sb, "- Level: %s\n", req.UserLevel)
		}
	}

	sb.WriteString("\nTeaching Guidelines:\n")
	sb.WriteString("- Explain the topic using only the provided course materials.\n")
	sb.WriteString("- Break explanations into short, clear sections.\n")
	sb.WriteString("- Provide relatable examples.\n")
	sb.WriteString("- Pause after each major point to ask a reflective question.\n")
	sb.WriteString("- Summarize the key takeaways at the end.\n")

	if len(references) == 0 {
		sb.WriteString("\nNo relevant course content snippets were retrieved. Provide a high-level overview of the topic and ask the learner for more specifics if needed.\n")
		return sb.String()
	}

	sb.WriteString("\nRelevant Course Content Snippets:\n")
	for i, ref := range references {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, normalizeSnippet(ref.RawText))
	}

	sb.WriteString("\nTask:\n")
	sb.WriteString("Craft a conversational lesson covering the focus topic using the snippets above. Include interactive questions and suggest next steps for practice.")

	return sb.String()
}

// normalizeSnippet collapses line breaks so each snippet occupies one
// numbered line, then bounds its length.
func normalizeSnippet(text string) string {
	replaced := strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(text)
	return domain.TruncateEllipsis(strings.TrimSpace(replaced), maxSnippetRunes)
}
