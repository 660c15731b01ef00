// Package providers implements the engine's two parallel provider
// registries (text, image): lazily initialized mappings from provider id to
// a concrete client, each shared process-wide across runs.
package providers

import "context"

// TextMessage is one chat message in a text-provider request.
type TextMessage struct {
	Role    string
	Content string
}

// TextProvider implements a single chat completion call against a remote
// text-generation service. Implementations must be safe for concurrent use
// — the same instance is shared across every run in the process.
type TextProvider interface {
	Chat(ctx context.Context, messages []TextMessage, model string, temperature float64, maxTokens int) (string, error)
}

// ImageResult is the outcome of a successful image-generation call.
type ImageResult struct {
	ImageBase64 string
	ContentType string
	PromptUsed  string
}

// ImageProvider implements a single (possibly polling) image-generation
// call against a remote service. width/height of zero mean "unspecified";
// aspectRatio carries the caller's already-resolved ratio in that case.
type ImageProvider interface {
	Generate(ctx context.Context, prompt, model, aspectRatio, outputFormat string, width, height int) (ImageResult, error)
}
