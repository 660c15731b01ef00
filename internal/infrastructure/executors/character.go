package executors

import (
	"context"

	"github.com/graphrun/graphrun/internal/domain/execution"
	"github.com/graphrun/graphrun/internal/domain/graphrun"
)

// ConsistentCharacter turns a saved character's name/description into a
// reusable persona: a pure data reshape with no provider call.
func ConsistentCharacter() execution.ExecutorFn {
	return func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error) {
		description := nctx.DataString("characterDescription")
		if description == "" {
			return graphrun.NodeOutput{Error: "No character selected"}, nil
		}
		name := nctx.DataString("characterName")

		return graphrun.NodeOutput{
			Text:               description,
			PersonaDescription: description,
			PersonaName:        name,
		}, nil
	}
}
