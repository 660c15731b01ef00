package executors

import (
	"context"
	"fmt"

	"github.com/graphrun/graphrun/internal/domain/execution"
	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/providers"
)

// InitialPrompt seeds a pipeline: node_data.text wins over any merged
// upstream text, then folds in adapter personas if present.
func InitialPrompt(resolveText TextResolver) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		text := nctx.DataString("text")
		if text == "" {
			text = mergeInputText(nctx.TextInputs)
		}

		provider, err := resolveText(nctx.ProviderID)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		injected, err := injectPersonasIfPresent(ctx, text, nctx, provider)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		return graphrun.NodeOutput{Text: injected, InjectedPrompt: injected}, nil
	}
}

// PromptEnhancer asks the text provider to expand merged input text using
// any author notes, then folds in adapter personas.
func PromptEnhancer(resolveText TextResolver) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		merged := mergeInputText(nctx.TextInputs)
		notes := nctx.DataString("notes")

		provider, err := resolveText(nctx.ProviderID)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		prompt := "Enhance and enrich the following prompt with vivid, specific detail while preserving its intent.\n\n"
		if notes != "" {
			prompt += fmt.Sprintf("Notes: %s\n\n", notes)
		}
		prompt += merged

		enhanced, err := provider.Chat(ctx, []providers.TextMessage{{Role: "user", Content: prompt}}, nctx.Model, nctx.Temperature, 2500)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		injected, err := injectPersonasIfPresent(ctx, enhanced, nctx, provider)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		return graphrun.NodeOutput{Text: injected}, nil
	}
}

// Translator passes text through unchanged when no target language is set,
// otherwise asks the text provider to translate it.
func Translator(resolveText TextResolver) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		merged := mergeInputText(nctx.TextInputs)
		langCode := nctx.DataString("language")
		if langCode == "" {
			return graphrun.NodeOutput{Text: merged}, nil
		}

		provider, err := resolveText(nctx.ProviderID)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		language, ok := languageNames[langCode]
		if !ok {
			language = langCode
		}
		prompt := fmt.Sprintf("Translate the following text to %s.\nOutput ONLY the translation, nothing else.\nKeep under 2500 characters.\n\n%s", language, merged)
		translated, err := provider.Chat(ctx, []providers.TextMessage{{Role: "user", Content: prompt}}, nctx.Model, nctx.Temperature, 2500)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}
		return graphrun.NodeOutput{Text: translated}, nil
	}
}

// StoryTeller expands an idea/tags (or merged upstream text) into a story,
// then folds in adapter personas.
func StoryTeller(resolveText TextResolver) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		source := mergeInputText(nctx.TextInputs)
		if source == "" {
			source = nctx.DataString("idea")
		}
		tags := nctx.DataString("tags")

		provider, err := resolveText(nctx.ProviderID)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		prompt := "Write a short story from the following idea.\n\n"
		if tags != "" {
			prompt += fmt.Sprintf("Tags: %s\n\n", tags)
		}
		prompt += source

		story, err := provider.Chat(ctx, []providers.TextMessage{{Role: "user", Content: prompt}}, nctx.Model, nctx.Temperature, 2500)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		injected, err := injectPersonasIfPresent(ctx, story, nctx, provider)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		return graphrun.NodeOutput{Text: injected}, nil
	}
}

// GrammarFix asks the text provider to correct grammar in the merged input,
// optionally steered by a style note.
func GrammarFix(resolveText TextResolver) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		merged := mergeInputText(nctx.TextInputs)
		style := nctx.DataString("style")

		provider, err := resolveText(nctx.ProviderID)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		prompt := "Correct grammar and punctuation in the following text without changing its meaning.\n\n"
		if style != "" {
			prompt += fmt.Sprintf("Style: %s\n\n", style)
		}
		prompt += merged

		fixed, err := provider.Chat(ctx, []providers.TextMessage{{Role: "user", Content: prompt}}, nctx.Model, nctx.Temperature, 2500)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}
		return graphrun.NodeOutput{Text: fixed}, nil
	}
}

// compressionThreshold is the character length above which the compressor
// calls out to the text provider instead of passing its input through.
const compressionThreshold = 2500

// Compressor passes text at or below compressionThreshold straight through;
// longer text is condensed by the text provider.
func Compressor(resolveText TextResolver) execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		merged := mergeInputText(nctx.TextInputs)
		if len(merged) <= compressionThreshold {
			return graphrun.NodeOutput{Text: merged}, nil
		}

		provider, err := resolveText(nctx.ProviderID)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}

		prompt := "Condense the following text to its essential meaning, as concisely as possible.\n\n" + merged
		compressed, err := provider.Chat(ctx, []providers.TextMessage{{Role: "user", Content: prompt}}, nctx.Model, nctx.Temperature, 2500)
		if err != nil {
			return graphrun.NodeOutput{}, err
		}
		return graphrun.NodeOutput{Text: compressed}, nil
	}
}

// TextOutput is an identity sink: it merges its inputs and passes them
// through unchanged.
func TextOutput() execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		return graphrun.NodeOutput{Text: mergeInputText(nctx.TextInputs)}, nil
	}
}
