package executors

import (
	"sync"

	"github.com/graphrun/graphrun/internal/domain/execution"
)

// MapRegistry is the process-wide node_type -> ExecutorFn mapping.
// Registration is idempotent: registering the same type twice simply
// replaces the entry, rather than erroring.
type MapRegistry struct {
	mu        sync.RWMutex
	executors map[string]execution.ExecutorFn
}

// NewMapRegistry creates an empty executor registry.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{executors: make(map[string]execution.ExecutorFn)}
}

func (r *MapRegistry) Register(nodeType string, fn execution.ExecutorFn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[nodeType] = fn
}

func (r *MapRegistry) Get(nodeType string) (execution.ExecutorFn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.executors[nodeType]
	return fn, ok
}

// RegisterDefaults wires every required node-type executor into r in a
// deterministic order, backed by the given text/image provider registries.
func RegisterDefaults(r *MapRegistry, textProviders TextResolver, imageProviders ImageResolver) {
	r.Register("initialPrompt", InitialPrompt(textProviders))
	r.Register("promptEnhancer", PromptEnhancer(textProviders))
	r.Register("translator", Translator(textProviders))
	r.Register("storyTeller", StoryTeller(textProviders))
	r.Register("grammarFix", GrammarFix(textProviders))
	r.Register("compressor", Compressor(textProviders))
	r.Register("textOutput", TextOutput())
	r.Register("imageDescriber", ImageDescriber(textProviders))
	r.Register("imageGenerator", ImageGenerator(imageProviders))
	r.Register("consistentCharacter", ConsistentCharacter())
	r.Register("sceneBuilder", SceneBuilder())
}
