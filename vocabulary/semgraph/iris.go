package semgraph

// Namespace is the base IRI for semgraph ontology terms.
const Namespace = "https://semgraph.dev/ontology/"

// EntityNamespace is the base IRI for converted graph elements without an IRI of their own.
const EntityNamespace = "https://semgraph.dev/entity/"

// Class IRIs.
const (
	// ClassNode is a property graph node.
	ClassNode = Namespace + "Node"

	// ClassEdge is a property graph edge.
	ClassEdge = Namespace + "Edge"

	// ClassSnapshot is a stored conversion result.
	ClassSnapshot = Namespace + "Snapshot"
)
