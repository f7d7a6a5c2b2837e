package convert

import (
	"fmt"
	"log/slog"

	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
)

// Assemble builds the property graph from transformed records. Edges whose source
// or target is not a node are skipped and counted in Stats.Dropped; source data that
// points at untyped resources routinely produces them. A record without an
// identifier, endpoints or attributes fails with *MalformedEdgeError.
func (c *Converter) Assemble(nodes []NodeRecord, edges []EdgeRecord) (*pgraph.Graph, Stats, error) {
	return c.assemble(nodes, edges, c.logger)
}

func (c *Converter) assemble(nodes []NodeRecord, edges []EdgeRecord, logger *slog.Logger) (*pgraph.Graph, Stats, error) {
	g := pgraph.New()
	for _, n := range nodes {
		g.AddNode(n.IRI.Key(), n.Attrs)
	}

	var stats Stats
	for _, e := range edges {
		if err := validateEdge(e); err != nil {
			return nil, Stats{}, err
		}

		source, target := e.Source.Key(), e.Target.Key()
		if !g.HasNode(source) || !g.HasNode(target) {
			stats.Dropped++
			logger.Debug("Dropping edge with missing endpoint",
				"iri", e.IRI.Key(),
				"source", source,
				"target", target)
			continue
		}

		attrs := e.Attrs.Clone()
		attrs[pgraph.KeyIRI] = e.IRI.Key()

		var triples []rdf.Triple
		if !e.Predicate.IsZero() {
			triples = append(triples, rdf.Triple{Subject: e.Source, Predicate: e.Predicate, Object: e.Target})
		}
		if _, err := g.AddEdge(source, target, e.IRI.Key(), attrs, triples...); err != nil {
			return nil, Stats{}, fmt.Errorf("add edge %s: %w", e.IRI.Key(), err)
		}
	}

	stats.Nodes = g.NumNodes()
	stats.Edges = g.NumEdges()
	return g, stats, nil
}

func validateEdge(e EdgeRecord) error {
	var missing []string
	if e.IRI.IsZero() {
		missing = append(missing, "iri")
	}
	if e.Source.IsZero() {
		missing = append(missing, "source")
	}
	if e.Target.IsZero() {
		missing = append(missing, "target")
	}
	if e.Attrs == nil {
		missing = append(missing, "attrs")
	}
	if len(missing) > 0 {
		return &MalformedEdgeError{IRI: e.IRI.Key(), Missing: missing}
	}
	return nil
}
