package executors

import (
	"context"
	"testing"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsistentCharacter_ReshapesDescriptionIntoPersona(t *testing.T) {
	exec := ConsistentCharacter()

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{
		NodeData: map[string]interface{}{
			"characterName":        "Rook",
			"characterDescription": "a weathered dock-hand with a quiet voice",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rook", out.PersonaName)
	assert.Equal(t, "a weathered dock-hand with a quiet voice", out.PersonaDescription)
	assert.Equal(t, "a weathered dock-hand with a quiet voice", out.Text)
}

func TestConsistentCharacter_ErrorsWithoutDescription(t *testing.T) {
	exec := ConsistentCharacter()

	out, err := exec(context.Background(), graphrun.NodeExecutionContext{})
	require.NoError(t, err)
	assert.True(t, out.HasError())
	assert.Equal(t, "No character selected", out.Error)
}
