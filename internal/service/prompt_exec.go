package service

import (
	"context"
	"fmt"
)

// ChatClientInterface generates a completion for an assembled prompt
type ChatClientInterface interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

// PromptExecutionResult pairs the assembled prompt with the model's
// response to it.
type PromptExecutionResult struct {
	PromptResult
	Response string
}

// PromptExecutionService builds a topic's lesson prompt and runs it
// through the chat model in one call.
type PromptExecutionService struct {
	prompts *PromptService
	chat    ChatClientInterface
}

// NewPromptExecutionService creates a new PromptExecutionService instance
func NewPromptExecutionService(prompts *PromptService, chat ChatClientInterface) *PromptExecutionService {
	return &PromptExecutionService{prompts: prompts, chat: chat}
}

// Execute builds the prompt for the topic and returns it together with
// the model's completion.
func (s *PromptExecutionService) Execute(ctx context.Context, topicID int64, ownerID, userName, userLevel string, topK int) (*PromptExecutionResult, error) {
	result, err := s.prompts.BuildPromptForTopic(ctx, topicID, ownerID, userName, userLevel, topK)
	if err != nil {
		return nil, err
	}

	response, err := s.chat.GenerateCompletion(ctx, result.Prompt)
	if err != nil {
		return nil, fmt.Errorf("executing prompt for topic %d: %w", topicID, err)
	}

	return &PromptExecutionResult{
		PromptResult: *result,
		Response:     response,
	}, nil
}
