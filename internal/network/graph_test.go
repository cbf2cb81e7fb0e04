package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdge_Normalizes(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: " vitamin_C ", Target: " iron ", Effect: " Boosts ", Confidence: " high "})

	e, ok := g.EdgeBetween("vitamin_C", "iron")
	require.True(t, ok)
	assert.Equal(t, "boosts", e.Effect)
	assert.Equal(t, "high", e.Confidence)
	assert.True(t, g.Has("vitamin_C"))
	assert.True(t, g.Has("iron"))
}

func TestAddEdge_SkipsBlankEndpoints(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: "", Target: "iron", Effect: "boosts"})
	g.AddEdge(Edge{Source: "iron", Target: "  ", Effect: "boosts"})

	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
}

func TestAddEdge_LastRowWinsPerPair(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: "a", Target: "b", Effect: "boosts"})
	g.AddEdge(Edge{Source: "a", Target: "b", Effect: "inhibits"})

	e, ok := g.EdgeBetween("a", "b")
	require.True(t, ok)
	assert.Equal(t, "inhibits", e.Effect)

	// successors are deduped, raw edge rows are not
	assert.Equal(t, []string{"b"}, g.Successors("a"))
	assert.Len(t, g.Edges(), 2)
}

func TestGraph_OrderIsFirstAppearance(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: "c", Target: "a", Effect: "boosts"})
	g.AddEdge(Edge{Source: "a", Target: "b", Effect: "boosts"})

	assert.Equal(t, []string{"c", "a", "b"}, g.Nodes())
}

func TestLoadGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.csv")
	content := `source,target,effect,confidence,notes
vitamin_C,indicator_iron_serum,boosts,high,enhances absorption
calcium,indicator_iron_serum,inhibits,high,competes for uptake
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Len(t, g.Edges(), 2)
	assert.Equal(t, []string{"vitamin_C", "indicator_iron_serum", "calcium"}, g.Nodes())

	e, ok := g.EdgeBetween("calcium", "indicator_iron_serum")
	require.True(t, ok)
	assert.Equal(t, "inhibits", e.Effect)
	assert.Equal(t, "competes for uptake", e.Notes)
}

func TestLoadGraph_MissingFile(t *testing.T) {
	_, err := LoadGraph(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestLoadGraph_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.csv")
	require.NoError(t, os.WriteFile(path, []byte("source,target\na,b\n"), 0o600))

	_, err := LoadGraph(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "effect")
}
