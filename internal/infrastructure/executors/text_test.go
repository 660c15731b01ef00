package executors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTextProvider records every call it receives and returns a scripted
// response, so executor tests can assert on the exact prompt shape without
// a live model.
type fakeTextProvider struct {
	response string
	err      error
	calls    []string
}

func (f *fakeTextProvider) Chat(ctx context.Context, messages []providers.TextMessage, model string, temperature float64, maxTokens int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(messages) > 0 {
		f.calls = append(f.calls, messages[len(messages)-1].Content)
	}
	return f.response, nil
}

func resolverFor(p *fakeTextProvider) TextResolver {
	return func(providerID string) (providers.TextProvider, error) {
		return p, nil
	}
}

func TestInitialPrompt_PrefersExplicitTextOverMergedInputs(t *testing.T) {
	fake := &fakeTextProvider{}
	exec := InitialPrompt(resolverFor(fake))

	nctx := graphrun.NodeExecutionContext{
		NodeData:   map[string]interface{}{"text": "explicit seed"},
		TextInputs: []graphrun.NodeOutput{{Text: "upstream text"}},
	}

	out, err := exec(context.Background(), nctx)
	require.NoError(t, err)
	assert.Equal(t, "explicit seed", out.Text)
	assert.Equal(t, "explicit seed", out.InjectedPrompt)
	assert.Empty(t, fake.calls, "no persona present, the provider must not be called")
}

func TestInitialPrompt_FallsBackToMergedInputsAndInjectsPersonas(t *testing.T) {
	fake := &fakeTextProvider{response: "seed with persona woven in"}
	exec := InitialPrompt(resolverFor(fake))

	nctx := graphrun.NodeExecutionContext{
		TextInputs:    []graphrun.NodeOutput{{Text: "upstream text"}},
		AdapterInputs: []graphrun.NodeOutput{{PersonaName: "Mira", PersonaDescription: "a cartographer"}},
	}

	out, err := exec(context.Background(), nctx)
	require.NoError(t, err)
	assert.Equal(t, "seed with persona woven in", out.Text)
	require.Len(t, fake.calls, 1)
	assert.Contains(t, fake.calls[0], "Mira")
	assert.Contains(t, fake.calls[0], "upstream text")
}

func TestInitialPrompt_PropagatesProviderResolutionError(t *testing.T) {
	boom := errors.New("unknown provider")
	exec := InitialPrompt(func(providerID string) (providers.TextProvider, error) { return nil, boom })

	_, err := exec(context.Background(), graphrun.NodeExecutionContext{})
	assert.ErrorIs(t, err, boom)
}

func TestTranslator_PassesThroughWithoutLanguage(t *testing.T) {
	fake := &fakeTextProvider{}
	exec := Translator(resolverFor(fake))

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		TextInputs: []graphrun.NodeOutput{{Text: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Text)
	assert.Empty(t, fake.calls)
}

func TestTranslator_CallsProviderWhenLanguageSet(t *testing.T) {
	fake := &fakeTextProvider{response: "bonjour"}
	exec := Translator(resolverFor(fake))

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		NodeData:   map[string]interface{}{"language": "fr"},
		TextInputs: []graphrun.NodeOutput{{Text: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "bonjour", out.Text)
	require.Len(t, fake.calls, 1)
	assert.Contains(t, fake.calls[0], "French")
	require.Len(t, fake.calls, 1)
	assert.Contains(t, fake.calls[0], "French")
}

func TestCompressor_PassesThroughAtThreshold(t *testing.T) {
	fake := &fakeTextProvider{}
	exec := Compressor(resolverFor(fake))

	short := strings.Repeat("a", compressionThreshold)
	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		TextInputs: []graphrun.NodeOutput{{Text: short}},
	})
	require.NoError(t, err)
	assert.Equal(t, short, out.Text)
	assert.Empty(t, fake.calls)
}

func TestCompressor_CallsProviderAboveThreshold(t *testing.T) {
	fake := &fakeTextProvider{response: "condensed"}
	exec := Compressor(resolverFor(fake))

	long := strings.Repeat("a", compressionThreshold+1)
	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		TextInputs: []graphrun.NodeOutput{{Text: long}},
	})
	require.NoError(t, err)
	assert.Equal(t, "condensed", out.Text)
	require.Len(t, fake.calls, 1)
}

func TestTextOutput_MergesInputsUnchanged(t *testing.T) {
	exec := TextOutput()

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		TextInputs: []graphrun.NodeOutput{{Text: "first"}, {Text: "second"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", out.Text)
}

func TestMergeInputText_SkipsEmptyFields(t *testing.T) {
	merged := mergeInputText([]graphrun.NodeOutput{
		{Text: "", ReplacePrompt: "", InjectedPrompt: "", PersonaDescription: ""},
		{Text: "kept"},
	})
	assert.Equal(t, "kept", merged)
}

func TestExtractPersonas_DefaultsUnknownName(t *testing.T) {
	personas := extractPersonas([]graphrun.NodeOutput{
		{PersonaDescription: "a wanderer"},
		{PersonaName: "Sol", PersonaDescription: "a smith"},
		{PersonaDescription: ""},
	})
	require.Len(t, personas, 2)
	assert.Equal(t, "Unknown", personas[0].Name)
	assert.Equal(t, "Sol", personas[1].Name)
}
