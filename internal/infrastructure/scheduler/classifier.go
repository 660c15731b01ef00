// Package scheduler turns a node/edge graph into an ordered, leveled list of
// execution steps: edge classification, Kahn's-algorithm topological sort
// with level grouping, and the ancestor/descendant traversals partial
// re-execution needs.
package scheduler

import "github.com/graphrun/graphrun/internal/domain/graphrun"

// ClassifyEdges splits the sources of edges targeting nodeID into ordered
// text-input and adapter-input source id lists, in the order they appear in
// edges. A pure function with no failure mode.
func ClassifyEdges(nodeID string, edges []graphrun.Edge) (textInputs, adapterInputs []string) {
	for _, e := range edges {
		if e.Target != nodeID {
			continue
		}
		if e.IsAdapter() {
			adapterInputs = append(adapterInputs, e.Source)
		} else {
			textInputs = append(textInputs, e.Source)
		}
	}
	return textInputs, adapterInputs
}
