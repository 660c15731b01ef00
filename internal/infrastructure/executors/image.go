package executors

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphrun/graphrun/internal/domain/execution"
	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/providers"
)

// ImageDescriber parses a data-URI (or bare base64) image from node_data and
// asks the vision-capable text provider to describe it.
func ImageDescriber(resolveText TextResolver) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		raw := nctx.DataString("image")
		if raw == "" {
			return graphrun.NodeOutput{Error: "No image provided for description"}, nil
		}

		media, _ := splitDataURI(raw)

		provider, err := resolveText(nctx.ProviderID)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		prompt := fmt.Sprintf("Describe this %s image in vivid, concrete detail.\n\n%s", media, raw)
		description, err := provider.Chat(ctx, []providers.TextMessage{{Role: "user", Content: prompt}}, nctx.Model, nctx.Temperature, 2500)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		return graphrun.NodeOutput{Text: description, Image: raw}, nil
	}
}

// splitDataURI parses "data:<media>;base64,<payload>", defaulting media to
// image/png when the header is absent.
func splitDataURI(raw string) (media, payload string) {
	if !strings.HasPrefix(raw, "data:") {
		return "image/png", raw
	}
	rest := strings.TrimPrefix(raw, "data:")
	parts := strings.SplitN(rest, ";base64,", 2)
	if len(parts) != 2 {
		return "image/png", raw
	}
	return parts[0], parts[1]
}

// ImageGenerator calls the image provider with merged input text (or
// node_data.prompt) and returns a data-URI image alongside the prompt used.
func ImageGenerator(resolveImage ImageResolver) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		prompt := mergeInputText(nctx.TextInputs)
		if prompt == "" {
			prompt = nctx.DataString("prompt")
		}
		if prompt == "" {
			return graphrun.NodeOutput{Error: "No prompt provided for image generation"}, nil
		}

		width, _ := nctx.DataFloat("width")
		height, _ := nctx.DataFloat("height")

		provider, err := resolveImage(nctx.ProviderID)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		result, err := provider.Generate(ctx, prompt, nctx.Model, "1:1", "png", int(width), int(height))
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		contentType := result.ContentType
		if contentType == "" {
			contentType = "image/png"
		}

		return graphrun.NodeOutput{
			Text:  result.PromptUsed,
			Image: fmt.Sprintf("data:%s;base64,%s", contentType, result.ImageBase64),
		}, nil
	}
}
