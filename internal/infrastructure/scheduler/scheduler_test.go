package scheduler

import (
	"testing"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, typ string) graphrun.Node {
	return graphrun.Node{ID: id, Type: typ}
}

func TestSchedule_TopologicalOrder(t *testing.T) {
	nodes := []graphrun.Node{
		node("a", "initialPrompt"),
		node("b", "translator"),
		node("c", "textOutput"),
	}
	edges := []graphrun.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	}

	steps, err := Schedule(nodes, edges)
	require.NoError(t, err)
	require.Len(t, steps, 3)

	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.NodeID
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestSchedule_FIFOTieBreak(t *testing.T) {
	// Three independent nodes with no edges: order must follow submission
	// order, not any other tie-break.
	nodes := []graphrun.Node{
		node("z", "initialPrompt"),
		node("y", "initialPrompt"),
		node("x", "initialPrompt"),
	}

	steps, err := Schedule(nodes, nil)
	require.NoError(t, err)

	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.NodeID
	}
	assert.Equal(t, []string{"z", "y", "x"}, ids)
}

func TestSchedule_DetectsCycle(t *testing.T) {
	nodes := []graphrun.Node{
		node("a", "initialPrompt"),
		node("b", "translator"),
	}
	edges := []graphrun.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	}

	_, err := Schedule(nodes, edges)
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, 0, cycleErr.Scheduled)
	assert.Equal(t, 2, cycleErr.Total)
}

func TestSchedule_SkipsGroupNodes(t *testing.T) {
	nodes := []graphrun.Node{
		node("g", graphrun.GroupNodeType),
		node("a", "initialPrompt"),
	}
	edges := []graphrun.Edge{
		{Source: "g", Target: "a"},
	}

	steps, err := Schedule(nodes, edges)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "a", steps[0].NodeID)
	// Inputs are classified over the full edge list, so the group node stays
	// listed; it never resolves at dispatch since it has no output.
	assert.Equal(t, []string{"g"}, steps[0].InputNodeIDs)
}

func TestSchedule_DeduplicatesNodeIDs(t *testing.T) {
	nodes := []graphrun.Node{
		node("a", "initialPrompt"),
		node("a", "translator"), // duplicate id, first occurrence wins
	}

	steps, err := Schedule(nodes, nil)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "initialPrompt", steps[0].NodeType)
}

func TestSchedule_ClassifiesAdapterEdges(t *testing.T) {
	nodes := []graphrun.Node{
		node("a", "initialPrompt"),
		node("b", "consistentCharacter"),
		node("c", "sceneBuilder"),
	}
	edges := []graphrun.Edge{
		{Source: "a", Target: "c"},
		{Source: "b", Target: "c", TargetHandle: "adapter-character"},
	}

	steps, err := Schedule(nodes, edges)
	require.NoError(t, err)

	var sceneStep graphrun.ExecutionStep
	for _, s := range steps {
		if s.NodeID == "c" {
			sceneStep = s
		}
	}
	assert.Equal(t, []string{"a"}, sceneStep.InputNodeIDs)
	assert.Equal(t, []string{"b"}, sceneStep.AdapterNodeIDs)
}

func TestLevels_ParallelWave(t *testing.T) {
	nodes := []graphrun.Node{
		node("a", "initialPrompt"),
		node("b", "translator"),
		node("c", "translator"),
		node("d", "textOutput"),
	}
	edges := []graphrun.Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "c"},
		{Source: "b", Target: "d"},
		{Source: "c", Target: "d"},
	}

	steps, err := Schedule(nodes, edges)
	require.NoError(t, err)

	levels := Levels(steps)
	require.Len(t, levels, 3)
	assert.Len(t, levels[0], 1) // a
	assert.Len(t, levels[1], 2) // b, c in parallel
	assert.Len(t, levels[2], 1) // d
}

func TestAncestorsAndDescendants(t *testing.T) {
	edges := []graphrun.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "d"},
	}

	ancestors := Ancestors("c", edges)
	assert.Contains(t, ancestors, "a")
	assert.Contains(t, ancestors, "b")
	assert.NotContains(t, ancestors, "c")
	assert.NotContains(t, ancestors, "d")

	descendants := Descendants("b", edges)
	assert.Contains(t, descendants, "c")
	assert.Contains(t, descendants, "d")
	assert.NotContains(t, descendants, "a")
	assert.NotContains(t, descendants, "b")
}
