// Package network builds the nutrient interaction graph and derives the
// scheduling rules and causal explanations that depend on it.
package network

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Edge is one directed relationship between two nutrient-related nodes.
// Effect is normalized to lower case; confidence and notes are kept
// verbatim for rendering.
type Edge struct {
	Source     string
	Target     string
	Effect     string
	Confidence string
	Notes      string
}

const (
	EffectBoosts   = "boosts"
	EffectInhibits = "inhibits"
)

// Graph is a directed adjacency-list graph over nutrient nodes. At most
// one edge is kept per (source, target) pair, last row winning. Node
// and successor order follow first appearance in the source rows, which
// keeps traversal deterministic.
type Graph struct {
	order      []string
	nodes      map[string]bool
	successors map[string][]string
	edge       map[[2]string]Edge
	edges      []Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]bool),
		successors: make(map[string][]string),
		edge:       make(map[[2]string]Edge),
	}
}

// AddEdge inserts or replaces the edge from e.Source to e.Target.
func (g *Graph) AddEdge(e Edge) {
	e.Source = strings.TrimSpace(e.Source)
	e.Target = strings.TrimSpace(e.Target)
	if e.Source == "" || e.Target == "" {
		return
	}
	e.Effect = strings.ToLower(strings.TrimSpace(e.Effect))
	e.Confidence = strings.TrimSpace(e.Confidence)
	e.Notes = strings.TrimSpace(e.Notes)

	g.addNode(e.Source)
	g.addNode(e.Target)

	key := [2]string{e.Source, e.Target}
	if _, seen := g.edge[key]; !seen {
		g.successors[e.Source] = append(g.successors[e.Source], e.Target)
	}
	g.edge[key] = e
	g.edges = append(g.edges, e)
}

func (g *Graph) addNode(n string) {
	if !g.nodes[n] {
		g.nodes[n] = true
		g.order = append(g.order, n)
	}
}

// Has reports whether node exists in the graph.
func (g *Graph) Has(node string) bool {
	return g.nodes[node]
}

// Nodes returns all nodes in first-appearance order.
func (g *Graph) Nodes() []string {
	return g.order
}

// Edges returns every loaded edge row in source order, duplicates
// included. Rule derivation and plan notes consume the raw rows.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// EdgeBetween returns the retained edge from source to target.
func (g *Graph) EdgeBetween(source, target string) (Edge, bool) {
	e, ok := g.edge[[2]string{source, target}]
	return e, ok
}

// Successors returns the out-neighbors of node in insertion order.
func (g *Graph) Successors(node string) []string {
	return g.successors[node]
}

// LoadGraph reads the relationship table. The graph is optional
// infrastructure: a missing file is reported to the caller, which may
// degrade explanations and rules to empty rather than failing startup.
func LoadGraph(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "network: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "network: read header %s", path)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"source", "target", "effect"} {
		if _, ok := col[name]; !ok {
			return nil, eris.Errorf("network: relationship table missing column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	g := NewGraph()
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "network: parse %s", path)
		}
		g.AddEdge(Edge{
			Source:     field(rec, "source"),
			Target:     field(rec, "target"),
			Effect:     field(rec, "effect"),
			Confidence: field(rec, "confidence"),
			Notes:      field(rec, "notes"),
		})
	}

	zap.L().Info("network: relationship graph loaded",
		zap.String("path", path),
		zap.Int("nodes", len(g.order)),
		zap.Int("edges", len(g.edges)),
	)

	return g, nil
}
