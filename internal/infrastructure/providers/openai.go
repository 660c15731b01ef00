package providers

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements TextProvider against the OpenAI chat completions
// API. Adapted from the teacher's llm.OpenAIClient, trimmed to the single
// synchronous chat call the engine's executors need.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a client for the given API key.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

// Chat sends messages to OpenAI and returns the assistant's text content.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []TextMessage, model string, temperature float64, maxTokens int) (string, error) {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	if model == "" {
		model = openai.GPT4oMini
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: converted,
	}
	if temperature > 0 {
		chatReq.Temperature = float32(temperature)
	}
	if maxTokens > 0 {
		chatReq.MaxTokens = maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
