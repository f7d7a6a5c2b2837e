package semgraph_test

import (
	"testing"

	"github.com/c360studio/semstreams/vocabulary"

	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/semgraph"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		semgraph.NodeIRI,
		semgraph.NodeType,
		semgraph.EdgeSource,
		semgraph.EdgeTarget,
		semgraph.EdgeLabel,
		semgraph.EdgeKind,
		semgraph.SnapshotSource,
		semgraph.SnapshotCreatedAt,
		semgraph.SnapshotNodes,
		semgraph.SnapshotEdges,
	}

	for _, predicate := range predicates {
		t.Run(predicate, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(predicate)
			if meta == nil {
				t.Errorf("predicate %q not registered", predicate)
				return
			}
			if meta.Description == "" {
				t.Errorf("predicate %q has no description", predicate)
			}
			if meta.DataType == "" {
				t.Errorf("predicate %q has no data type", predicate)
			}
		})
	}
}

func TestPredicateIRI(t *testing.T) {
	tests := []struct {
		predicate string
		wantIRI   string
	}{
		{semgraph.EdgeSource, rdf.RDFSubject},
		{semgraph.EdgeTarget, rdf.RDFObject},
		{semgraph.EdgeLabel, rdf.RDFPredicate},
		{semgraph.NodeIRI, vocabulary.OwlSameAs},
		{"http://example.org/p", "http://example.org/p"},
		{"some.unknown.predicate", semgraph.Namespace + "some.unknown.predicate"},
	}

	for _, tc := range tests {
		t.Run(tc.predicate, func(t *testing.T) {
			if got := semgraph.PredicateIRI(tc.predicate); got != tc.wantIRI {
				t.Errorf("got %q, want %q", got, tc.wantIRI)
			}
		})
	}
}
