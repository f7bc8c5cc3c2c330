package callgraph

import (
	"fmt"

	"github.com/dominikbraun/graph"
)

// Graph is an in-memory, queryable view over a Data snapshot, built on
// dominikbraun/graph the same way the teacher's graph searcher does.
type Graph struct {
	g       graph.Graph[string, string]
	nodeIdx map[string]Node
	callers map[string][]string
	callees map[string][]string
}

// NewGraph builds a queryable graph from a snapshot. Edges that reference
// a node absent from data.Nodes are dropped rather than erroring, since a
// partially-indexed project can legitimately have dangling call targets.
func NewGraph(data *Data) *Graph {
	g := graph.New(graph.StringHash, graph.Directed())
	idx := make(map[string]Node, len(data.Nodes))
	for _, n := range data.Nodes {
		idx[n.ID] = n
		_ = g.AddVertex(n.ID)
	}

	callers := map[string][]string{}
	callees := map[string][]string{}
	for _, e := range data.Edges {
		if _, ok := idx[e.From]; !ok {
			continue
		}
		if _, ok := idx[e.To]; !ok {
			continue
		}
		_ = g.AddEdge(e.From, e.To)
		callees[e.From] = append(callees[e.From], e.To)
		callers[e.To] = append(callers[e.To], e.From)
	}

	return &Graph{g: g, nodeIdx: idx, callers: callers, callees: callees}
}

// Node looks up a node by its qualified ID.
func (cg *Graph) Node(id string) (Node, bool) {
	n, ok := cg.nodeIdx[id]
	return n, ok
}

// Callers returns the IDs of every node with a direct call edge into id.
func (cg *Graph) Callers(id string) []string {
	return cg.callers[id]
}

// Callees returns the IDs of every node id directly calls.
func (cg *Graph) Callees(id string) []string {
	return cg.callees[id]
}

// ShortestPath returns the shortest call path from -> to, or an error if
// no path exists.
func (cg *Graph) ShortestPath(from, to string) ([]string, error) {
	path, err := graph.ShortestPath(cg.g, from, to)
	if err != nil {
		return nil, fmt.Errorf("no call path from %s to %s: %w", from, to, err)
	}
	return path, nil
}

// Orphans returns every node with no callers and no callees, a signal the
// `codeindex doctor` consistency check surfaces as possibly-dead code.
func (cg *Graph) Orphans() []string {
	var out []string
	for id := range cg.nodeIdx {
		if len(cg.callers[id]) == 0 && len(cg.callees[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}
