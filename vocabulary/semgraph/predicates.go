package semgraph

import (
	"strings"

	"github.com/c360studio/semstreams/vocabulary"

	"github.com/c360studio/semgraph/rdf"
)

// Node predicates.
const (
	// NodeIRI links a graph node to the RDF resource it was built from.
	NodeIRI = "semgraph.node.iri"

	// NodeType is the class of a graph element.
	NodeType = "semgraph.node.type"
)

// Edge predicates describe an edge as a statement about the edge identifier.
const (
	// EdgeSource is the node the edge leaves.
	EdgeSource = "semgraph.edge.source"

	// EdgeTarget is the node the edge enters.
	EdgeTarget = "semgraph.edge.target"

	// EdgeLabel is the predicate the edge stands for.
	EdgeLabel = "semgraph.edge.label"

	// EdgeKind is "basic" or "reified".
	EdgeKind = "semgraph.edge.kind"
)

// Snapshot predicates.
const (
	// SnapshotSource describes where the converted RDF came from.
	SnapshotSource = "semgraph.snapshot.source"

	// SnapshotCreatedAt is the RFC3339 creation timestamp.
	SnapshotCreatedAt = "semgraph.snapshot.created_at"

	// SnapshotNodes is the node count of the snapshot.
	SnapshotNodes = "semgraph.snapshot.nodes"

	// SnapshotEdges is the edge count of the snapshot.
	SnapshotEdges = "semgraph.snapshot.edges"
)

func init() {
	vocabulary.Register(NodeIRI,
		vocabulary.WithDescription("RDF resource a node was built from"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.OwlSameAs))

	vocabulary.Register(NodeType,
		vocabulary.WithDescription("Class of a graph element"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(rdf.RDFType))

	vocabulary.Register(EdgeSource,
		vocabulary.WithDescription("Source node of an edge"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(rdf.RDFSubject))

	vocabulary.Register(EdgeTarget,
		vocabulary.WithDescription("Target node of an edge"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(rdf.RDFObject))

	vocabulary.Register(EdgeLabel,
		vocabulary.WithDescription("Predicate represented by an edge"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(rdf.RDFPredicate))

	vocabulary.Register(EdgeKind,
		vocabulary.WithDescription("Edge provenance: basic or reified"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"edgeKind"))

	vocabulary.Register(SnapshotSource,
		vocabulary.WithDescription("Origin of the converted RDF"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcSource))

	vocabulary.Register(SnapshotCreatedAt,
		vocabulary.WithDescription("Snapshot creation timestamp"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(vocabulary.ProvGeneratedAtTime))

	vocabulary.Register(SnapshotNodes,
		vocabulary.WithDescription("Number of nodes in the snapshot"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"nodeCount"))

	vocabulary.Register(SnapshotEdges,
		vocabulary.WithDescription("Number of edges in the snapshot"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"edgeCount"))
}

// PredicateIRI returns the standard IRI registered for a dotted predicate. Absolute
// IRIs are returned unchanged and unregistered names fall back to the semgraph namespace.
func PredicateIRI(predicate string) string {
	if strings.Contains(predicate, "://") {
		return predicate
	}
	if meta := vocabulary.GetPredicateMetadata(predicate); meta != nil && meta.StandardIRI != "" {
		return meta.StandardIRI
	}
	return Namespace + predicate
}
