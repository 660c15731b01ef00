package execution

import (
	"context"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
)

// ExecutorFn implements the behavior of one node type. It consumes a
// NodeExecutionContext and produces a NodeOutput. Implementations MUST set
// NodeOutput.Error rather than returning an error for recoverable
// conditions (a missing image, an empty prompt); returning a non-nil error
// is reserved for conditions the runner treats as a hard node failure.
// Implementations MAY leave DurationMs unset — the runner fills it in from
// wall-clock timing around the call.
type ExecutorFn func(ctx context.Context, nctx graphrun.NodeExecutionContext) (graphrun.NodeOutput, error)

// Registry maps node type to ExecutorFn. Registration is idempotent:
// registering the same type twice simply replaces the prior entry rather
// than erroring, since executor wiring happens once at startup in a
// deterministic order and re-registration (e.g. in tests swapping in a
// stub) must not panic the caller.
type Registry interface {
	Register(nodeType string, fn ExecutorFn)
	Get(nodeType string) (ExecutorFn, bool)
}
