// Package pgraph is a directed property multigraph: nodes and parallel edges both
// carry attribute maps. Nodes and edges are kept in insertion order.
package pgraph

import (
	"errors"
	"fmt"

	"github.com/c360studio/semgraph/rdf"
)

// Reserved attribute keys.
const (
	// KeyIRI holds the identifier a node or edge was built from.
	KeyIRI = "iri"
	// KeyLabel holds the short predicate name of a basic relation.
	KeyLabel = "_label"
)

// ErrMissingEndpoint is returned when an edge refers to a node that is not in the graph.
var ErrMissingEndpoint = errors.New("edge endpoint is not a node")

// Attributes maps attribute keys to values. Converted graphs hold string scalars and
// []string tuples; collapsed graphs may also hold native literal values.
type Attributes map[string]any

// Clone returns a shallow copy.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Node is a graph vertex.
type Node struct {
	Key string
	// Value is the native value of a literal node, nil for resources.
	Value any
	Attrs Attributes
}

// ValueOrKey returns the literal value when present, else the key.
func (n *Node) ValueOrKey() any {
	if n.Value != nil {
		return n.Value
	}
	return n.Key
}

// Edge is a directed edge. (Source, Target, ID) identifies it.
type Edge struct {
	Source string
	Target string
	ID     string
	Attrs  Attributes
	// Triples are the RDF statements the edge stands for, if any.
	Triples []rdf.Triple
}

type edgeKey struct {
	source, target, id string
}

// Graph is a directed multigraph. It is not safe for concurrent mutation.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     []*Edge
	edgeIndex map[edgeKey]*Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		edgeIndex: make(map[edgeKey]*Edge),
	}
}

// AddNode inserts a node or merges attrs into an existing one. It returns the node.
func (g *Graph) AddNode(key string, attrs Attributes) *Node {
	if n, ok := g.nodes[key]; ok {
		for k, v := range attrs {
			n.Attrs[k] = v
		}
		return n
	}
	n := &Node{Key: key, Attrs: attrs.Clone()}
	g.nodes[key] = n
	g.nodeOrder = append(g.nodeOrder, key)
	return n
}

// AddEdge inserts an edge between two existing nodes. Adding an edge whose
// (source, target, id) already exists merges the attributes and appends the triples.
func (g *Graph) AddEdge(source, target, id string, attrs Attributes, triples ...rdf.Triple) (*Edge, error) {
	for _, end := range []string{source, target} {
		if _, ok := g.nodes[end]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingEndpoint, end)
		}
	}

	key := edgeKey{source, target, id}
	if e, ok := g.edgeIndex[key]; ok {
		for k, v := range attrs {
			e.Attrs[k] = v
		}
		e.Triples = append(e.Triples, triples...)
		return e, nil
	}

	e := &Edge{Source: source, Target: target, ID: id, Attrs: attrs.Clone(), Triples: triples}
	g.edges = append(g.edges, e)
	g.edgeIndex[key] = e
	return e, nil
}

// HasNode reports whether key is a node.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// Node returns a node by key.
func (g *Graph) Node(key string) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Edge returns an edge by its identifying triple.
func (g *Graph) Edge(source, target, id string) (*Edge, bool) {
	e, ok := g.edgeIndex[edgeKey{source, target, id}]
	return e, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, key := range g.nodeOrder {
		out = append(out, g.nodes[key])
	}
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// OutEdges returns the edges leaving key.
func (g *Graph) OutEdges(key string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.Source == key {
			out = append(out, e)
		}
	}
	return out
}

// InEdges returns the edges entering key.
func (g *Graph) InEdges(key string) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.Target == key {
			out = append(out, e)
		}
	}
	return out
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return len(g.edges) }

// RemoveNode deletes a node and its incident edges. Unknown keys are ignored.
func (g *Graph) RemoveNode(key string) {
	g.RemoveNodes([]string{key})
}

// RemoveNodes deletes nodes and their incident edges and returns how many nodes
// were removed. Unknown keys are ignored.
func (g *Graph) RemoveNodes(keys []string) int {
	drop := make(map[string]bool, len(keys))
	for _, key := range keys {
		if _, ok := g.nodes[key]; ok {
			drop[key] = true
			delete(g.nodes, key)
		}
	}
	if len(drop) == 0 {
		return 0
	}

	order := g.nodeOrder[:0]
	for _, key := range g.nodeOrder {
		if !drop[key] {
			order = append(order, key)
		}
	}
	g.nodeOrder = order

	edges := g.edges[:0]
	for _, e := range g.edges {
		if drop[e.Source] || drop[e.Target] {
			delete(g.edgeIndex, edgeKey{e.Source, e.Target, e.ID})
			continue
		}
		edges = append(edges, e)
	}
	for i := len(edges); i < len(g.edges); i++ {
		g.edges[i] = nil
	}
	g.edges = edges

	return len(drop)
}
