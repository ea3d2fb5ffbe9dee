package openai

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/lessonforge/internal/domain"
)

type fakeChatCompleter struct {
	request  openai.ChatCompletionRequest
	response openai.ChatCompletionResponse
	err      error
	calls    int
}

func (f *fakeChatCompleter) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.request = request
	return f.response, f.err
}

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func testCourse() *domain.Course {
	return &domain.Course{ID: 7, OwnerID: "owner-1", Title: "Intro to Physics", Description: "Mechanics and waves"}
}

func testChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:         "chunk-" + string(rune('a'+i)),
			CourseID:   7,
			DocumentID: 1,
			OrderIndex: i,
			RawText:    strings.Repeat("newton ", 10),
		}
	}
	return chunks
}

func TestTopicExtractor_ZeroChunksShortCircuits(t *testing.T) {
	api := &fakeChatCompleter{}
	extractor := &TopicExtractor{api: api, model: DefaultChatModel}

	suggestions, err := extractor.ExtractTopics(context.Background(), testCourse(), nil)

	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Zero(t, api.calls, "no network call for zero chunks")
}

func TestTopicExtractor_ParsesSuggestions(t *testing.T) {
	content := `{"topics":[
		{"title":"Newton's Laws","confidence":0.9,"supportingChunkIndexes":[0,1,1,2]},
		{"title":"  ","confidence":0.5},
		{"title":"Wave Motion","confidence":1.7,"supportingChunkIndexes":[3,"four",5.5]},
		{"title":"Energy Conservation"}
	]}`
	api := &fakeChatCompleter{response: chatResponse(content)}
	extractor := &TopicExtractor{api: api, model: DefaultChatModel}

	suggestions, err := extractor.ExtractTopics(context.Background(), testCourse(), testChunks(4))

	require.NoError(t, err)
	require.Len(t, suggestions, 3, "blank title skipped")

	assert.Equal(t, "Newton's Laws", suggestions[0].Title)
	assert.Equal(t, 0.9, suggestions[0].Confidence)
	assert.Equal(t, []int{0, 1, 2}, suggestions[0].SupportingChunkIndexes, "indexes deduplicated")

	assert.Equal(t, "Wave Motion", suggestions[1].Title)
	assert.Equal(t, 1.0, suggestions[1].Confidence, "confidence clamped into [0,1]")
	assert.Equal(t, []int{3}, suggestions[1].SupportingChunkIndexes, "unparsable entries dropped")

	assert.Equal(t, "Energy Conservation", suggestions[2].Title)
	assert.Zero(t, suggestions[2].Confidence, "missing confidence defaults to 0")
	assert.Empty(t, suggestions[2].SupportingChunkIndexes)
}

func TestTopicExtractor_RequestShape(t *testing.T) {
	api := &fakeChatCompleter{response: chatResponse(`{"topics":[]}`)}
	extractor := &TopicExtractor{api: api, model: "gpt-4o-mini", temperature: 0.2}

	chunks := testChunks(15)
	// Shuffle order indexes to prove the prompt sorts them.
	chunks[0], chunks[14] = chunks[14], chunks[0]

	_, err := extractor.ExtractTopics(context.Background(), testCourse(), chunks)
	require.NoError(t, err)

	require.NotNil(t, api.request.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, api.request.ResponseFormat.Type)
	require.Len(t, api.request.Messages, 2)

	prompt := api.request.Messages[1].Content
	assert.Contains(t, prompt, "Course Title: Intro to Physics")
	assert.Contains(t, prompt, "- Chunk 0:")
	assert.Contains(t, prompt, "- Chunk 11:")
	assert.NotContains(t, prompt, "- Chunk 12:", "only the first 12 chunks are sampled")
}

func TestTopicExtractor_TruncatesLongSnippets(t *testing.T) {
	api := &fakeChatCompleter{response: chatResponse(`{"topics":[]}`)}
	extractor := &TopicExtractor{api: api, model: DefaultChatModel}

	chunks := []domain.Chunk{{OrderIndex: 0, RawText: strings.Repeat("x", 2000)}}
	_, err := extractor.ExtractTopics(context.Background(), testCourse(), chunks)
	require.NoError(t, err)

	assert.Contains(t, api.request.Messages[1].Content, strings.Repeat("x", 800)+"…")
	assert.NotContains(t, api.request.Messages[1].Content, strings.Repeat("x", 801))
}

func TestTopicExtractor_MalformedContent(t *testing.T) {
	cases := map[string]string{
		"not json":        "the model rambled instead of returning JSON",
		"missing topics":  `{"themes":[]}`,
		"topics not list": `{"topics":"Newton"}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			api := &fakeChatCompleter{response: chatResponse(content)}
			extractor := &TopicExtractor{api: api, model: DefaultChatModel}

			_, err := extractor.ExtractTopics(context.Background(), testCourse(), testChunks(1))

			require.Error(t, err)
			var domainErr *domain.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domain.ErrCodeInternalError, domainErr.Code)
		})
	}
}

func TestTopicExtractor_TransportFailure(t *testing.T) {
	transportErr := errors.New("connection refused")
	api := &fakeChatCompleter{err: transportErr}
	extractor := &TopicExtractor{api: api, model: DefaultChatModel}

	_, err := extractor.ExtractTopics(context.Background(), testCourse(), testChunks(1))

	assert.ErrorIs(t, err, transportErr)
}

func TestTopicExtractor_NoChoices(t *testing.T) {
	api := &fakeChatCompleter{response: openai.ChatCompletionResponse{}}
	extractor := &TopicExtractor{api: api, model: DefaultChatModel}

	_, err := extractor.ExtractTopics(context.Background(), testCourse(), testChunks(1))

	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestNewTopicExtractor_RequiresAPIKey(t *testing.T) {
	_, err := NewTopicExtractor(TopicExtractorConfig{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
