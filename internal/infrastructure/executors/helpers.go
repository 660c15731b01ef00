// Package executors implements the per-node-type behaviors the runner
// dispatches against a NodeExecutionContext, plus the shared helpers every
// text-oriented executor composes from.
package executors

import (
	"context"
	"strings"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/providers"
)

// mergeInputText concatenates, in input order and field order, the non-empty
// text/replace_prompt/injected_prompt/persona_description fields of each
// input, separated by a blank line. Empty or missing fields are skipped.
func mergeInputText(inputs []graphrun.NodeOutput) string {
	var parts []string
	for _, in := range inputs {
		for _, field := range []string{in.Text, in.ReplacePrompt, in.InjectedPrompt, in.PersonaDescription} {
			if field != "" {
				parts = append(parts, field)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// languageNames maps a translator's two-letter language code to the display
// name sent to the text provider. Unknown codes pass through unchanged.
var languageNames = map[string]string{
	"en": "English", "es": "Spanish", "fr": "French", "de": "German",
	"it": "Italian", "pt": "Portuguese", "ru": "Russian", "ja": "Japanese",
	"ko": "Korean", "zh": "Chinese", "ar": "Arabic", "hi": "Hindi",
	"tr": "Turkish", "pl": "Polish", "nl": "Dutch", "sv": "Swedish",
	"da": "Danish", "no": "Norwegian", "fi": "Finnish", "cs": "Czech",
	"el": "Greek", "he": "Hebrew", "th": "Thai", "vi": "Vietnamese",
	"id": "Indonesian", "ms": "Malay", "uk": "Ukrainian", "ro": "Romanian",
}

// persona is one adapter-supplied character/voice extracted from an
// adapter input's persona fields.
type persona struct {
	Name        string
	Description string
}

// extractPersonas emits one persona per adapter input with a non-empty
// persona_description, preserving input order. A missing persona_name
// defaults to "Unknown".
func extractPersonas(adapterInputs []graphrun.NodeOutput) []persona {
	var personas []persona
	for _, in := range adapterInputs {
		if in.PersonaDescription == "" {
			continue
		}
		name := in.PersonaName
		if name == "" {
			name = "Unknown"
		}
		personas = append(personas, persona{Name: name, Description: in.PersonaDescription})
	}
	return personas
}

// injectPersonasIfPresent folds any adapter-supplied personas into text via
// the resolved text provider, at max_tokens=2500. With no personas present,
// text is returned unchanged and no provider call is made.
func injectPersonasIfPresent(ctx context.Context, text string, nctx graphrun.NodeExecutionContext, provider providers.TextProvider) (string, error) {
	personas := extractPersonas(nctx.AdapterInputs)
	if len(personas) == 0 {
		return text, nil
	}

	var sb strings.Builder
	sb.WriteString("The following personas are present in this scene:\n")
	for _, p := range personas {
		sb.WriteString("- ")
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		sb.WriteString(p.Description)
		sb.WriteString("\n")
	}
	sb.WriteString("\nIncorporate them naturally into the text below without restating this instruction.\n\n")
	sb.WriteString(text)

	return provider.Chat(ctx, []providers.TextMessage{
		{Role: "user", Content: sb.String()},
	}, nctx.Model, nctx.Temperature, 2500)
}
