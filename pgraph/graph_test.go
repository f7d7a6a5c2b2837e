package pgraph

import (
	"encoding/json"
	"testing"

	"github.com/c360studio/semgraph/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeRequiresEndpoints(t *testing.T) {
	g := New()
	g.AddNode("a", Attributes{KeyIRI: "a"})

	_, err := g.AddEdge("a", "b", "e1", nil)
	assert.ErrorIs(t, err, ErrMissingEndpoint)
	_, err = g.AddEdge("b", "a", "e1", nil)
	assert.ErrorIs(t, err, ErrMissingEndpoint)
	assert.Equal(t, 0, g.NumEdges())

	g.AddNode("b", nil)
	e, err := g.AddEdge("a", "b", "e1", Attributes{KeyLabel: "knows"})
	require.NoError(t, err)
	assert.Equal(t, "knows", e.Attrs[KeyLabel])
}

func TestParallelEdges(t *testing.T) {
	g := New()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	_, err := g.AddEdge("a", "b", "e1", Attributes{"w": "1"})
	require.NoError(t, err)
	_, err = g.AddEdge("a", "b", "e2", Attributes{"w": "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumEdges())

	// Same key merges instead of adding a third edge.
	_, err = g.AddEdge("a", "b", "e1", Attributes{"x": "y"})
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumEdges())
	e, ok := g.Edge("a", "b", "e1")
	require.True(t, ok)
	assert.Equal(t, Attributes{"w": "1", "x": "y"}, e.Attrs)
}

func TestAddNodeMergesAttributes(t *testing.T) {
	g := New()
	attrs := Attributes{"name": "Alice"}
	g.AddNode("a", attrs)
	g.AddNode("a", Attributes{"age": "42"})

	n, ok := g.Node("a")
	require.True(t, ok)
	assert.Equal(t, Attributes{"name": "Alice", "age": "42"}, n.Attrs)
	// The caller's map is not aliased.
	assert.Len(t, attrs, 1)
	assert.Equal(t, 1, g.NumNodes())
}

func TestRemoveNodesDropsIncidentEdges(t *testing.T) {
	g := New()
	for _, k := range []string{"a", "b", "c"} {
		g.AddNode(k, nil)
	}
	mustEdge(t, g, "a", "b", "ab")
	mustEdge(t, g, "b", "c", "bc")
	mustEdge(t, g, "a", "c", "ac")

	assert.Equal(t, 1, g.RemoveNodes([]string{"b", "missing"}))
	assert.False(t, g.HasNode("b"))
	require.Equal(t, 1, g.NumEdges())
	assert.Equal(t, "ac", g.Edges()[0].ID)
	_, ok := g.Edge("a", "b", "ab")
	assert.False(t, ok)

	var keys []string
	for _, n := range g.Nodes() {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []string{"a", "c"}, keys)

	g.RemoveNode("missing")
	assert.Equal(t, 2, g.NumNodes())
}

func TestInOutEdges(t *testing.T) {
	g := New()
	for _, k := range []string{"a", "b", "c"} {
		g.AddNode(k, nil)
	}
	mustEdge(t, g, "a", "b", "1")
	mustEdge(t, g, "a", "c", "2")
	mustEdge(t, g, "c", "b", "3")

	assert.Len(t, g.OutEdges("a"), 2)
	assert.Len(t, g.InEdges("b"), 2)
	assert.Empty(t, g.InEdges("a"))
}

func TestTermGraph(t *testing.T) {
	a := rdf.IRI("http://example.org/a")
	b := rdf.IRI("http://example.org/b")
	knows := rdf.IRI("http://example.org/knows")
	likes := rdf.IRI("http://example.org/likes")
	age := rdf.IRI("http://example.org/age")

	g := TermGraph([]rdf.Triple{
		{Subject: a, Predicate: knows, Object: b},
		{Subject: a, Predicate: likes, Object: b},
		{Subject: a, Predicate: age, Object: rdf.Integer(42)},
	})

	assert.Equal(t, 3, g.NumNodes())
	// knows and likes share the (a, b) edge.
	require.Equal(t, 2, g.NumEdges())
	ab, ok := g.Edge(a.Key(), b.Key(), "")
	require.True(t, ok)
	assert.Len(t, ab.Triples, 2)

	lit, ok := g.Node(rdf.Integer(42).Key())
	require.True(t, ok)
	assert.Equal(t, int64(42), lit.Value)
	assert.Equal(t, int64(42), lit.ValueOrKey())

	res, _ := g.Node(b.Key())
	assert.Nil(t, res.Value)
	assert.Equal(t, b.Key(), res.ValueOrKey())
}

func TestNodeLinkJSON(t *testing.T) {
	g := New()
	g.AddNode("http://example.org/a", Attributes{KeyIRI: "http://example.org/a", "name": []string{"A", "Alpha"}})
	g.AddNode("http://example.org/b", Attributes{KeyIRI: "http://example.org/b"})
	tr := rdf.Triple{
		Subject:   rdf.IRI("http://example.org/a"),
		Predicate: rdf.IRI("http://example.org/knows"),
		Object:    rdf.IRI("http://example.org/b"),
	}
	_, err := g.AddEdge("http://example.org/a", "http://example.org/b", "e1", Attributes{KeyLabel: "knows"}, tr)
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, true, doc["directed"])
	assert.Equal(t, true, doc["multigraph"])
	nodes := doc["nodes"].([]any)
	require.Len(t, nodes, 2)
	assert.Equal(t, "http://example.org/a", nodes[0].(map[string]any)["id"])
	links := doc["links"].([]any)
	require.Len(t, links, 1)
	link := links[0].(map[string]any)
	assert.Equal(t, "e1", link["key"])
	assert.Equal(t, "knows", link[KeyLabel])

	back := New()
	require.NoError(t, json.Unmarshal(data, back))
	assert.Equal(t, 2, back.NumNodes())
	e, ok := back.Edge("http://example.org/a", "http://example.org/b", "e1")
	require.True(t, ok)
	assert.Equal(t, []rdf.Triple{tr}, e.Triples)
	assert.Equal(t, "knows", e.Attrs[KeyLabel])
}

func TestNodeLinkRejectsDanglingLink(t *testing.T) {
	doc := `{"directed":true,"multigraph":true,"graph":{},"nodes":[{"id":"a"}],"links":[{"source":"a","target":"b","key":"x"}]}`
	g := New()
	err := json.Unmarshal([]byte(doc), g)
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

func mustEdge(t *testing.T, g *Graph, s, o, id string) {
	t.Helper()
	_, err := g.AddEdge(s, o, id, nil)
	require.NoError(t, err)
}
