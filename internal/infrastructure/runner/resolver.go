package runner

import (
	"context"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
	"github.com/graphrun/graphrun/internal/infrastructure/cache"
)

const defaultTemperature = 0.7

// modelDefault is one row of the per-node-type default table: the provider
// and model an executor runs against when node_data doesn't fully override
// it, plus the temperature that type runs at.
type modelDefault struct {
	ProviderID  string
	Model       string
	Temperature float64
}

// nodeTypeDefaults is the fixed, immutable per-type model default table.
// Shipped read-only; replacing it wholesale at startup is supported,
// mutating it in place is not.
var nodeTypeDefaults = map[string]modelDefault{
	"grammarFix":       {ProviderID: "mistral", Model: "ministral-14b-2512", Temperature: 0.7},
	"compressor":       {ProviderID: "mistral", Model: "ministral-14b-2512", Temperature: 0.7},
	"promptEnhancer":   {ProviderID: "mistral", Model: "ministral-14b-2512", Temperature: 0.7},
	"initialPrompt":    {ProviderID: "mistral", Model: "ministral-14b-2512", Temperature: 0.7},
	"translator":       {ProviderID: "mistral", Model: "ministral-14b-2512", Temperature: 0.7},
	"storyTeller":      {ProviderID: "mistral", Model: "labs-mistral-small-creative", Temperature: 0.95},
	"imageDescriber":   {ProviderID: "claude", Model: "", Temperature: 0.7},
	"personasReplacer": {ProviderID: "claude", Model: "", Temperature: 0.7},
}

// ResolveModel implements the three-tier provider/model/temperature
// priority chain: an explicit node-level override wins outright; failing
// that, a per-type default (itself overridable field-by-field); failing
// that, the flow-level provider with an empty model (the provider resolves
// its own default) and default temperature.
func ResolveModel(node graphrun.Node, flowProviderID string) graphrun.ResolvedModel {
	providerID := node.DataString("providerId")
	model := node.DataString("model")

	def, hasDefault := nodeTypeDefaults[node.ResolvedType()]

	if providerID != "" && model != "" {
		temperature := defaultTemperature
		if hasDefault {
			temperature = def.Temperature
		}
		return graphrun.ResolvedModel{ProviderID: providerID, Model: model, Temperature: temperature}
	}

	if hasDefault {
		resolvedProvider := providerID
		if resolvedProvider == "" {
			resolvedProvider = def.ProviderID
		}
		resolvedModel := model
		if resolvedModel == "" {
			resolvedModel = def.Model
		}
		return graphrun.ResolvedModel{ProviderID: resolvedProvider, Model: resolvedModel, Temperature: def.Temperature}
	}

	return graphrun.ResolvedModel{ProviderID: flowProviderID, Model: "", Temperature: defaultTemperature}
}

// ResolveModelCached wraps ResolveModel with an optional lookup cache. Only
// the pure per-type-default branch (no node-level provider/model override)
// is cacheable across nodes of the same type, since an override is specific
// to one node instance; callers pass a nil cache to skip caching entirely.
func ResolveModelCached(ctx context.Context, modelCache *cache.ModelCache, node graphrun.Node, flowProviderID string) graphrun.ResolvedModel {
	hasOverride := node.DataString("providerId") != "" || node.DataString("model") != ""
	if modelCache == nil || hasOverride {
		return ResolveModel(node, flowProviderID)
	}

	nodeType := node.ResolvedType()
	if resolved, ok := modelCache.Get(ctx, flowProviderID, nodeType); ok {
		return resolved
	}

	resolved := ResolveModel(node, flowProviderID)
	_ = modelCache.Set(ctx, flowProviderID, nodeType, resolved)
	return resolved
}
