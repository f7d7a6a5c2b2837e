package pgraph

import "github.com/c360studio/semgraph/rdf"

// TermGraph builds a graph with one node per subject and object term and one edge
// per (subject, object) pair carrying every triple between them. Literal nodes hold
// their native value. This is the shape the predicate collapser works on.
func TermGraph(triples []rdf.Triple) *Graph {
	g := New()
	for _, tr := range triples {
		for _, t := range []rdf.Term{tr.Subject, tr.Object} {
			key := t.Key()
			if g.HasNode(key) {
				continue
			}
			n := g.AddNode(key, nil)
			if t.IsLiteral() {
				n.Value = t.Native()
			}
		}
		// Both endpoints were just added.
		_, _ = g.AddEdge(tr.Subject.Key(), tr.Object.Key(), "", nil, tr)
	}
	return g
}
