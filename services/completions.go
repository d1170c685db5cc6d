package services

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const creatorSystemPrompt = `You help a writer build a fictional character step by step.
Ask one question at a time about the character's name, personality, origin, goals, fears,
backstory and archetype. When every answer is collected, summarize the character and say
"Character created".`

// CompletionsService drives the creation agent through an OpenAI-compatible chat completions API
type CompletionsService struct {
	client *openai.Client
	model  string
}

// NewCompletionsService creates a client for the API at baseURL
func NewCompletionsService(baseURL, apiKey, model string) *CompletionsService {
	if apiKey == "" {
		apiKey = "sk-xxx"
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return &CompletionsService{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Send asks the model for the next creation step
func (s *CompletionsService) Send(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: creatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completions API")
	}

	return resp.Choices[0].Message.Content, nil
}
