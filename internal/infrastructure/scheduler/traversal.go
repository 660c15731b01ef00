package scheduler

import "github.com/graphrun/graphrun/internal/domain/graphrun"

// Ancestors returns the set of every node id reachable by walking edges
// backward (target -> source) from start, excluding start itself. Used by
// partial re-execution to find what must be cached or re-run upstream of a
// trigger node.
func Ancestors(start string, edges []graphrun.Edge) map[string]struct{} {
	predecessors := make(map[string][]string)
	for _, e := range edges {
		predecessors[e.Target] = append(predecessors[e.Target], e.Source)
	}
	return bfs(start, predecessors)
}

// Descendants returns the set of every node id reachable by walking edges
// forward (source -> target) from start, excluding start itself.
func Descendants(start string, edges []graphrun.Edge) map[string]struct{} {
	successors := make(map[string][]string)
	for _, e := range edges {
		successors[e.Source] = append(successors[e.Source], e.Target)
	}
	return bfs(start, successors)
}

func bfs(start string, adjacency map[string][]string) map[string]struct{} {
	visited := make(map[string]struct{})
	queue := append([]string{}, adjacency[start]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		queue = append(queue, adjacency[id]...)
	}
	return visited
}
