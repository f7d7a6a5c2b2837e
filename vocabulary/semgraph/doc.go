// Package semgraph provides the vocabulary predicates used when converted property
// graphs leave the process: as semstreams entity triples or as exported RDF.
//
// # Semstreams Integration
//
// Predicates use the three-level dotted notation (domain.category.property) and are
// registered in init() with vocabulary.Register(). Each predicate carries a
// standard IRI through vocabulary.WithIRI() so exported statements line up with the
// RDF reification vocabulary:
//
//	semgraph.edge.source  → rdf:subject
//	semgraph.edge.label   → rdf:predicate
//	semgraph.edge.target  → rdf:object
//	semgraph.node.iri     → owl:sameAs
//
// Node attributes keep their source predicate IRIs. PredicateIRI falls back to
// the semgraph namespace for dotted names that are not registered.
//
// # Usage
//
//	triples := []message.Triple{
//	    {Subject: edgeID, Predicate: semgraph.EdgeSource, Object: sourceID},
//	    {Subject: edgeID, Predicate: semgraph.EdgeTarget, Object: targetID},
//	}
package semgraph
