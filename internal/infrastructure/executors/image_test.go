package executors

import (
	"context"
	"errors"
	"testing"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageProvider struct {
	result providers.ImageResult
	err    error
}

func (f *fakeImageProvider) Generate(ctx context.Context, prompt, model, aspectRatio, outputFormat string, width, height int) (providers.ImageResult, error) {
	if f.err != nil {
		return providers.ImageResult{}, f.err
	}
	f.result.PromptUsed = prompt
	return f.result, nil
}

func TestImageDescriber_ErrorsWithoutImage(t *testing.T) {
	exec := ImageDescriber(resolverFor(&fakeTextProvider{}))

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{})
	require.NoError(t, err)
	assert.True(t, out.HasError())
	assert.Equal(t, "No image provided for description", out.Error)
}

func TestImageDescriber_DescribesDataURIImage(t *testing.T) {
	fake := &fakeTextProvider{response: "a sunlit courtyard"}
	exec := ImageDescriber(resolverFor(fake))

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		NodeData: map[string]interface{}{"image": "data:image/jpeg;base64,AAAA"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a sunlit courtyard", out.Text)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", out.Image)
	require.Len(t, fake.calls, 1)
	assert.Contains(t, fake.calls[0], "image/jpeg")
}

func TestSplitDataURI_DefaultsWhenNoHeader(t *testing.T) {
	media, payload := splitDataURI("AAAA")
	assert.Equal(t, "image/png", media)
	assert.Equal(t, "AAAA", payload)
}

func TestSplitDataURI_ParsesHeader(t *testing.T) {
	media, payload := splitDataURI("data:image/webp;base64,ZZZZ")
	assert.Equal(t, "image/webp", media)
	assert.Equal(t, "ZZZZ", payload)
}

func TestImageGenerator_ErrorsWithoutPrompt(t *testing.T) {
	exec := ImageGenerator(func(providerID string) (providers.ImageProvider, error) {
		return &fakeImageProvider{}, nil
	})

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{})
	require.NoError(t, err)
	assert.True(t, out.HasError())
}

func TestImageGenerator_FallsBackToNodeDataPrompt(t *testing.T) {
	fake := &fakeImageProvider{result: providers.ImageResult{ImageBase64: "AAAA", ContentType: "image/png"}}
	exec := ImageGenerator(func(providerID string) (providers.ImageProvider, error) { return fake, nil })

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		NodeData: map[string]interface{}{"prompt": "a lighthouse at dusk"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a lighthouse at dusk", out.Text)
	assert.Equal(t, "data:image/png;base64,AAAA", out.Image)
}

func TestImageGenerator_DefaultsContentTypeWhenAbsent(t *testing.T) {
	fake := &fakeImageProvider{result: providers.ImageResult{ImageBase64: "AAAA"}}
	exec := ImageGenerator(func(providerID string) (providers.ImageProvider, error) { return fake, nil })

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		TextInputs: []graphrun.NodeOutput{{Text: "a quiet harbor"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", out.Image)
}

func TestImageGenerator_PropagatesProviderError(t *testing.T) {
	boom := errors.New("generation failed")
	exec := ImageGenerator(func(providerID string) (providers.ImageProvider, error) {
		return &fakeImageProvider{err: boom}, nil
	})

	_, err := exec(context.Background(), graphrun.NodeExecutionContext{
		NodeData: map[string]interface{}{"prompt": "x"},
	})
	assert.ErrorIs(t, err, boom)
}
