package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is used when no chat-specific override is configured.
	DefaultChatModel = "gpt-4o-mini"
	// DefaultChatTemperature is used when no override is configured.
	DefaultChatTemperature float32 = 0.3

	chatSystemInstruction = "You are an expert educator crafting helpful, structured responses."
)

var (
	// ErrNoChoices is returned when the completion response has no choices
	ErrNoChoices = errors.New("chat completion did not return any results")
	// ErrEmptyCompletion is returned when the completion content is blank
	ErrEmptyCompletion = errors.New("chat completion returned an empty response")
)

// chatCompleter is the slice of the go-openai client the chat service uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatConfig configures the chat completion client. ChatModel and
// ChatTemperature override Model/Temperature when set.
type ChatConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	ChatModel       string
	Temperature     float32
	ChatTemperature *float32
}

// ChatClient sends rendered prompts to the chat-completion endpoint.
type ChatClient struct {
	api         chatCompleter
	model       string
	temperature float32
}

// NewChatClient resolves model/temperature overrides and returns a client.
// The API credential is required.
func NewChatClient(cfg ChatConfig) (*ChatClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	model := cfg.ChatModel
	if model == "" {
		model = cfg.Model
	}
	if model == "" {
		model = DefaultChatModel
	}

	temperature := cfg.Temperature
	if cfg.ChatTemperature != nil {
		temperature = *cfg.ChatTemperature
	}
	if temperature == 0 {
		temperature = DefaultChatTemperature
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &ChatClient{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
	}, nil
}

// GenerateCompletion sends the prompt with the fixed system instruction and
// returns the trimmed answer text.
func (c *ChatClient) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: chatSystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}

	return content, nil
}
