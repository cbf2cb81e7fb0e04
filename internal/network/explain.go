package network

import (
	"sort"
	"strings"

	"github.com/hemovita/hemovita-cli/internal/model"
)

// DefaultMaxHops bounds causal path length in edges.
const DefaultMaxHops = 2

// Explainer enumerates bounded-length causal paths ending at deficient
// markers.
type Explainer struct {
	graph *Graph
}

// NewExplainer creates an Explainer over the given graph.
func NewExplainer(g *Graph) *Explainer {
	return &Explainer{graph: g}
}

// Explain returns, for each marker labeled low that exists as a graph
// node, every simple path of at most maxHops edges from any other node
// to that marker, rendered as strings. Rendered duplicates are removed
// and the result is sorted lexicographically. Targets with no paths are
// omitted; markers absent from the graph are silently skipped.
func (e *Explainer) Explain(labels map[string]model.Label, maxHops int) map[string][]string {
	out := make(map[string][]string)
	if e == nil || e.graph == nil {
		return out
	}
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	for marker, label := range labels {
		if label != model.LabelLow || !e.graph.Has(marker) {
			continue
		}

		seen := make(map[string]bool)
		for _, source := range e.graph.Nodes() {
			if source == marker {
				continue
			}
			e.collectPaths(source, marker, maxHops, []string{source}, seen)
		}

		if len(seen) == 0 {
			continue
		}
		paths := make([]string, 0, len(seen))
		for p := range seen {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out[marker] = paths
	}

	return out
}

// collectPaths walks simple paths from the last node of path toward
// target, recording each rendered path that reaches target within the
// hop budget. Paths stop at the target; they never pass through it.
func (e *Explainer) collectPaths(current, target string, hopsLeft int, path []string, seen map[string]bool) {
	if hopsLeft == 0 {
		return
	}
	for _, next := range e.graph.Successors(current) {
		if next == target {
			seen[e.render(append(path, next))] = true
			continue
		}
		if containsNode(path, next) {
			continue
		}
		e.collectPaths(next, target, hopsLeft-1, append(path, next), seen)
	}
}

// render formats a path as "n0 —effect→ n1 —effect→ n2".
func (e *Explainer) render(path []string) string {
	var b strings.Builder
	b.WriteString(path[0])
	for i := 1; i < len(path); i++ {
		edge, _ := e.graph.EdgeBetween(path[i-1], path[i])
		b.WriteString(" —")
		b.WriteString(edge.Effect)
		b.WriteString("→ ")
		b.WriteString(path[i])
	}
	return b.String()
}

func containsNode(path []string, node string) bool {
	for _, n := range path {
		if n == node {
			return true
		}
	}
	return false
}
