package providers

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements TextProvider against the Anthropic Messages
// API. Adapted from the teacher's llm.AnthropicClient, trimmed to the single
// synchronous chat call the engine's executors need.
type AnthropicProvider struct {
	client *anthropic.Client
}

// NewAnthropicProvider creates a client for the given API key.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Chat sends messages to Anthropic and returns the assistant's text content.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []TextMessage, model string, temperature float64, maxTokens int) (string, error) {
	converted := make([]anthropic.MessageParam, 0, len(messages))
	var systemPrompt string

	for _, m := range messages {
		switch m.Role {
		case "system":
			systemPrompt = m.Content
		case "user":
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		default:
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(model)),
		Messages:  anthropic.F(converted),
		MaxTokens: anthropic.F(int64(maxTokens)),
	}
	if systemPrompt != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(systemPrompt)})
	}
	if temperature > 0 {
		params.Temperature = anthropic.F(temperature)
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var text string
	for _, content := range message.Content {
		if content.Type == anthropic.ContentBlockTypeText {
			text += content.Text
		}
	}
	return text, nil
}
