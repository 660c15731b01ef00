package executors

import (
	"context"
	"testing"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneBuilder_ComposesInFixedKeyOrderRegardlessOfDataOrder(t *testing.T) {
	exec := SceneBuilder()

	// node_data keys set in the reverse of sceneKeyOrder; the composed text
	// must still follow imageStyle, lighting, timeOfDay, ... order.
	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		NodeData: map[string]interface{}{
			"mood":       "epic",
			"timeOfDay":  "dusk",
			"imageStyle": "anime",
		},
	})
	require.NoError(t, err)

	styleIdx := indexOf(out.Text, "Anime art style")
	timeIdx := indexOf(out.Text, "Dusk with fading light")
	moodIdx := indexOf(out.Text, "Epic and grandiose")

	require.GreaterOrEqual(t, styleIdx, 0)
	require.GreaterOrEqual(t, timeIdx, 0)
	require.GreaterOrEqual(t, moodIdx, 0)
	assert.Less(t, styleIdx, timeIdx)
	assert.Less(t, timeIdx, moodIdx)
}

func TestSceneBuilder_SkipsUnsetAndUnknownValues(t *testing.T) {
	exec := SceneBuilder()

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		NodeData: map[string]interface{}{
			"lighting": "not-a-real-option",
		},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Text)
}

func TestSceneBuilder_EmptyDataProducesEmptyText(t *testing.T) {
	exec := SceneBuilder()
	out, err := exec(context.Background(), graphrun.NodeExecutionContext{})
	require.NoError(t, err)
	assert.Empty(t, out.Text)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
