package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemovita/hemovita-cli/internal/model"
)

func anemiaGraph() *Graph {
	g := NewGraph()
	g.AddEdge(Edge{Source: "vitamin_C", Target: "indicator_iron_serum", Effect: "boosts"})
	g.AddEdge(Edge{Source: "indicator_iron_serum", Target: "Hemoglobin", Effect: "boosts"})
	g.AddEdge(Edge{Source: "calcium", Target: "indicator_iron_serum", Effect: "inhibits"})
	g.AddEdge(Edge{Source: "folate_plasma", Target: "Hemoglobin", Effect: "boosts"})
	return g
}

func TestExplain_PathsWithinHopBudget(t *testing.T) {
	e := NewExplainer(anemiaGraph())

	out := e.Explain(map[string]model.Label{"Hemoglobin": model.LabelLow}, 2)

	require.Contains(t, out, "Hemoglobin")
	assert.Equal(t, []string{
		"calcium —inhibits→ indicator_iron_serum —boosts→ Hemoglobin",
		"folate_plasma —boosts→ Hemoglobin",
		"indicator_iron_serum —boosts→ Hemoglobin",
		"vitamin_C —boosts→ indicator_iron_serum —boosts→ Hemoglobin",
	}, out["Hemoglobin"])
}

func TestExplain_OneHopOnly(t *testing.T) {
	e := NewExplainer(anemiaGraph())

	out := e.Explain(map[string]model.Label{"Hemoglobin": model.LabelLow}, 1)

	assert.Equal(t, []string{
		"folate_plasma —boosts→ Hemoglobin",
		"indicator_iron_serum —boosts→ Hemoglobin",
	}, out["Hemoglobin"])
}

func TestExplain_SkipsNonLowAndUnknownNodes(t *testing.T) {
	e := NewExplainer(anemiaGraph())

	out := e.Explain(map[string]model.Label{
		"Hemoglobin": model.LabelHigh,  // not low
		"ferritin":   model.LabelLow,   // not a graph node
		"vitamin_C":  model.LabelLow,   // node with no incoming paths
	}, 2)

	assert.Empty(t, out)
}

func TestExplain_NilGraph(t *testing.T) {
	var e *Explainer
	out := e.Explain(map[string]model.Label{"Hemoglobin": model.LabelLow}, 2)
	assert.Empty(t, out)
}

func TestExplain_CycleDoesNotLoop(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: "a", Target: "b", Effect: "boosts"})
	g.AddEdge(Edge{Source: "b", Target: "a", Effect: "boosts"})
	g.AddEdge(Edge{Source: "b", Target: "c", Effect: "boosts"})
	e := NewExplainer(g)

	out := e.Explain(map[string]model.Label{"c": model.LabelLow}, 3)

	assert.Equal(t, []string{
		"a —boosts→ b —boosts→ c",
		"b —boosts→ c",
	}, out["c"])
}
