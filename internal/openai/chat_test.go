package openai

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatClient_ModelResolution(t *testing.T) {
	low := float32(0.1)
	tests := []struct {
		name            string
		cfg             ChatConfig
		wantModel       string
		wantTemperature float32
	}{
		{
			name:            "defaults",
			cfg:             ChatConfig{APIKey: "sk-test"},
			wantModel:       DefaultChatModel,
			wantTemperature: DefaultChatTemperature,
		},
		{
			name:            "chat model wins over base model",
			cfg:             ChatConfig{APIKey: "sk-test", Model: "gpt-4o", ChatModel: "gpt-4.1-mini"},
			wantModel:       "gpt-4.1-mini",
			wantTemperature: DefaultChatTemperature,
		},
		{
			name:            "base model used when no chat override",
			cfg:             ChatConfig{APIKey: "sk-test", Model: "gpt-4o"},
			wantModel:       "gpt-4o",
			wantTemperature: DefaultChatTemperature,
		},
		{
			name:            "chat temperature overrides",
			cfg:             ChatConfig{APIKey: "sk-test", Temperature: 0.7, ChatTemperature: &low},
			wantModel:       DefaultChatModel,
			wantTemperature: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewChatClient(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, client.model)
			assert.Equal(t, tt.wantTemperature, client.temperature)
		})
	}
}

func TestNewChatClient_RequiresAPIKey(t *testing.T) {
	_, err := NewChatClient(ChatConfig{APIKey: "   "})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestChatClient_GenerateCompletion(t *testing.T) {
	api := &fakeChatCompleter{response: chatResponse("  Structured answer.\n")}
	client := &ChatClient{api: api, model: "gpt-4o-mini", temperature: 0.3}

	answer, err := client.GenerateCompletion(context.Background(), "Explain Newton's laws")

	require.NoError(t, err)
	assert.Equal(t, "Structured answer.", answer)

	require.Len(t, api.request.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, api.request.Messages[0].Role)
	assert.Equal(t, chatSystemInstruction, api.request.Messages[0].Content)
	assert.Equal(t, "Explain Newton's laws", api.request.Messages[1].Content)
	assert.Equal(t, "gpt-4o-mini", api.request.Model)
}

func TestChatClient_GenerateCompletion_NoChoices(t *testing.T) {
	api := &fakeChatCompleter{response: openai.ChatCompletionResponse{}}
	client := &ChatClient{api: api, model: DefaultChatModel}

	_, err := client.GenerateCompletion(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestChatClient_GenerateCompletion_EmptyContent(t *testing.T) {
	api := &fakeChatCompleter{response: chatResponse("   \n\t")}
	client := &ChatClient{api: api, model: DefaultChatModel}

	_, err := client.GenerateCompletion(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
