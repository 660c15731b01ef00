package scheduler

import (
	"fmt"

	"github.com/graphrun/graphrun/internal/domain/graphrun"
)

// CycleError indicates the graph contains a cycle: not every node could be
// scheduled.
type CycleError struct {
	Scheduled int
	Total     int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected in graph: %d/%d nodes scheduled", e.Scheduled, e.Total)
}

// Schedule computes the execution plan for nodes/edges: filters out group
// nodes, deduplicates node ids (first occurrence wins), and returns one
// ExecutionStep per remaining node in Kahn's-algorithm order. Ties within a
// zero-in-degree wave are broken FIFO, in node-submission order — this is
// observable and preserved for test determinism.
//
// Step input/adapter source ids are classified over the full edge list as
// submitted, not the set restricted to surviving nodes: a dependency on a
// filtered-out node (a group node) simply never resolves at dispatch time,
// since the output map never gains an entry for it — it behaves as an
// absent input rather than breaking scheduling.
func Schedule(nodes []graphrun.Node, edges []graphrun.Edge) ([]graphrun.ExecutionStep, error) {
	filtered, order := filterNodes(nodes)
	restricted := restrictEdges(filtered, edges)

	inDegree := make(map[string]int, len(order))
	successors := make(map[string][]string, len(order))
	for _, id := range order {
		inDegree[id] = 0
	}
	for _, e := range restricted {
		successors[e.Source] = append(successors[e.Source], e.Target)
		inDegree[e.Target]++
	}

	queue := make([]string, 0, len(order))
	for _, id := range order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	steps := make([]graphrun.ExecutionStep, 0, len(order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		textIns, adapterIns := ClassifyEdges(id, edges)
		steps = append(steps, graphrun.ExecutionStep{
			NodeID:         id,
			NodeType:       filtered[id].ResolvedType(),
			InputNodeIDs:   textIns,
			AdapterNodeIDs: adapterIns,
		})

		for _, next := range successors[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(steps) != len(order) {
		return nil, &CycleError{Scheduled: len(steps), Total: len(order)}
	}

	return steps, nil
}

// filterNodes drops group nodes and deduplicates by id, keeping the first
// occurrence. Returns the surviving nodes keyed by id plus their
// submission order.
func filterNodes(nodes []graphrun.Node) (map[string]graphrun.Node, []string) {
	filtered := make(map[string]graphrun.Node)
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.ResolvedType() == graphrun.GroupNodeType {
			continue
		}
		if _, exists := filtered[n.ID]; exists {
			continue
		}
		filtered[n.ID] = n
		order = append(order, n.ID)
	}
	return filtered, order
}

// restrictEdges keeps only edges whose source and target both survived
// filtering, for in-degree/adjacency computation.
func restrictEdges(filtered map[string]graphrun.Node, edges []graphrun.Edge) []graphrun.Edge {
	restricted := make([]graphrun.Edge, 0, len(edges))
	for _, e := range edges {
		if _, ok := filtered[e.Source]; !ok {
			continue
		}
		if _, ok := filtered[e.Target]; !ok {
			continue
		}
		restricted = append(restricted, e)
	}
	return restricted
}

// Levels partitions a schedule into ascending dependency levels: level(n) is
// 0 when n has no in-plan dependencies, otherwise one more than the deepest
// dependency's level. All members of a level are mutually independent and
// may run concurrently. Schedule's topological order guarantees every
// dependency of a step already has a computed level by the time that step
// is visited.
func Levels(steps []graphrun.ExecutionStep) [][]graphrun.ExecutionStep {
	level := make(map[string]int, len(steps))
	byID := make(map[string]graphrun.ExecutionStep, len(steps))
	for _, s := range steps {
		byID[s.NodeID] = s
	}

	maxLevel := 0
	for _, s := range steps {
		l := 0
		for _, dep := range append(append([]string{}, s.InputNodeIDs...), s.AdapterNodeIDs...) {
			if _, ok := byID[dep]; !ok {
				continue // dependency outside the plan (e.g. a group node)
			}
			if dl, ok := level[dep]; ok && dl+1 > l {
				l = dl + 1
			}
		}
		level[s.NodeID] = l
		if l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]graphrun.ExecutionStep, maxLevel+1)
	for _, s := range steps {
		l := level[s.NodeID]
		levels[l] = append(levels[l], s)
	}
	return levels
}
