package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lessonforge/lessonforge/internal/domain"
)

const (
	// topicSampleChunks bounds how many chunks are sent to the model.
	topicSampleChunks = 12
	// topicSnippetMaxChars bounds the length of each sampled chunk.
	topicSnippetMaxChars = 800
	// topicDescriptionMaxChars bounds the course description in the prompt.
	topicDescriptionMaxChars = 240

	topicSystemInstruction = "You are an educational designer that extracts study topics from course materials."
)

// TopicExtractorConfig configures the extraction request.
type TopicExtractorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// TopicExtractor asks a chat model to propose study topics for a course
// from a sample of its content chunks.
type TopicExtractor struct {
	api         chatCompleter
	model       string
	temperature float32
}

// NewTopicExtractor validates the credential and returns an extractor.
func NewTopicExtractor(cfg TopicExtractorConfig) (*TopicExtractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &TopicExtractor{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// ExtractTopics proposes 5-10 study topics from the course's chunks.
// Zero chunks short-circuit to an empty result without a network call.
// Transport failures surface to the caller; retry policy belongs there.
func (e *TopicExtractor) ExtractTopics(ctx context.Context, course *domain.Course, chunks []domain.Chunk) ([]domain.TopicSuggestion, error) {
	if len(chunks) == 0 {
		return []domain.TopicSuggestion{}, nil
	}

	resp, err := e.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: topicSystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: buildTopicPrompt(course, chunks)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("topic extraction request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	return parseTopicContent(resp.Choices[0].Message.Content)
}

func buildTopicPrompt(course *domain.Course, chunks []domain.Chunk) string {
	ordered := make([]domain.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})
	if len(ordered) > topicSampleChunks {
		ordered = ordered[:topicSampleChunks]
	}

	var b strings.Builder
	b.WriteString("Analyze the following course material snippets and propose between 5 and 10 concise study topics.\n")
	b.WriteString("Return a JSON object with a `topics` array. Each array item must contain:\n")
	b.WriteString(`{"title": string, "confidence": number (0-1), "supportingChunkIndexes": number[]}.` + "\n")
	b.WriteString("Titles must be unique, actionable, and under 80 characters.\n\n")
	fmt.Fprintf(&b, "Course Title: %s\n", course.Title)
	if strings.TrimSpace(course.Description) != "" {
		fmt.Fprintf(&b, "Course Description: %s\n", domain.TruncateEllipsis(course.Description, topicDescriptionMaxChars))
	}
	b.WriteString("Content Snippets:\n")
	for _, chunk := range ordered {
		fmt.Fprintf(&b, "- Chunk %d: %s\n", chunk.OrderIndex, domain.TruncateEllipsis(chunk.RawText, topicSnippetMaxChars))
	}
	return b.String()
}

type topicPayload struct {
	Title                  string            `json:"title"`
	Confidence             *float64          `json:"confidence"`
	SupportingChunkIndexes []json.RawMessage `json:"supportingChunkIndexes"`
}

type topicsEnvelope struct {
	Topics *[]topicPayload `json:"topics"`
}

// parseTopicContent decodes the model's JSON object. A response that is
// not valid JSON, or that lacks the topics array, is a malformed-response
// error rather than a silent empty result.
func parseTopicContent(content string) ([]domain.TopicSuggestion, error) {
	var envelope topicsEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodeInternalError, "model returned a malformed topic response", err)
	}
	if envelope.Topics == nil {
		return nil, domain.ErrMalformedTopicResponse
	}

	suggestions := make([]domain.TopicSuggestion, 0, len(*envelope.Topics))
	for _, entry := range *envelope.Topics {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		confidence := 0.0
		if entry.Confidence != nil {
			confidence = clamp01(*entry.Confidence)
		}

		suggestions = append(suggestions, domain.TopicSuggestion{
			Title:                  title,
			Confidence:             confidence,
			SupportingChunkIndexes: parseIndexSet(entry.SupportingChunkIndexes),
		})
	}
	return suggestions, nil
}

// parseIndexSet decodes each raw entry as an integer, dropping anything
// unparsable and deduplicating while preserving first-seen order.
func parseIndexSet(raw []json.RawMessage) []int {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(raw))
	indexes := make([]int, 0, len(raw))
	for _, entry := range raw {
		var value int
		if err := json.Unmarshal(entry, &value); err != nil {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		indexes = append(indexes, value)
	}
	return indexes
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
