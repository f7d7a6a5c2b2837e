package convert

import (
	"fmt"
	"log/slog"

	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/query"
	"github.com/c360studio/semgraph/rdf"
)

// NodeRecord is a node identifier with its aggregated attributes.
type NodeRecord struct {
	IRI   rdf.Term
	Attrs pgraph.Attributes
}

// EdgeKind tells how an edge record was produced.
type EdgeKind int

const (
	// EdgeBasic comes from a statement between two resources.
	EdgeBasic EdgeKind = iota
	// EdgeReified comes from a relation instance that carries its own properties.
	EdgeReified
)

func (k EdgeKind) String() string {
	if k == EdgeReified {
		return "reified"
	}
	return "basic"
}

// EdgeRecord is a directed relation between two node identifiers.
type EdgeRecord struct {
	IRI       rdf.Term
	Predicate rdf.Term
	Source    rdf.Term
	Target    rdf.Term
	Attrs     pgraph.Attributes
	Kind      EdgeKind
}

// TransformNodes builds one record per node identifier, in query order.
func (c *Converter) TransformNodes(src Source) ([]NodeRecord, error) {
	return c.transformNodes(src, c.logger)
}

// TransformEdges builds the basic relation records followed by the reified ones.
// A reified relation replaces an earlier record with the same identifier in place.
func (c *Converter) TransformEdges(src Source) ([]EdgeRecord, error) {
	return c.transformEdges(src, c.logger)
}

func (c *Converter) transformNodes(src Source, logger *slog.Logger) ([]NodeRecord, error) {
	ns, err := c.Namespaces(src)
	if err != nil {
		return nil, err
	}

	ids, err := c.catalog.NodeIRIs.Run(src, query.Bindings{query.VarBase: rdf.IRI(nsBase(ns))})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.catalog.NodeIRIs.Name(), err)
	}

	records := make([]NodeRecord, 0, ids.Len())
	index := make(map[rdf.Term]int, ids.Len())
	for i := range ids.Rows {
		id := ids.Get(i, query.VarIRI)
		b := query.Bindings{query.VarIRI: id}

		types, err := c.catalog.NodeTypes.Run(src, b)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", c.catalog.NodeTypes.Name(), id.Key(), err)
		}
		props, err := c.catalog.NodeProperties.Run(src, b)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", c.catalog.NodeProperties.Name(), id.Key(), err)
		}
		attrs, err := c.aggregate(ns, id, props.PropertyRows())
		if err != nil {
			return nil, err
		}

		logger.Debug("Transformed node",
			"iri", id.Key(),
			"types", types.Len(),
			"properties", props.Len())

		rec := NodeRecord{IRI: id, Attrs: attrs}
		if at, ok := index[id]; ok {
			records[at] = rec
			continue
		}
		index[id] = len(records)
		records = append(records, rec)
	}
	return records, nil
}

func (c *Converter) transformEdges(src Source, logger *slog.Logger) ([]EdgeRecord, error) {
	ns, err := c.Namespaces(src)
	if err != nil {
		return nil, err
	}

	var records []EdgeRecord
	index := make(map[rdf.Term]int)
	put := func(rec EdgeRecord) {
		at, ok := index[rec.IRI]
		if !ok {
			index[rec.IRI] = len(records)
			records = append(records, rec)
			return
		}
		if prev := records[at]; prev.Kind != rec.Kind {
			logger.Warn("Reified relation replaces basic relation with the same identifier",
				"iri", rec.IRI.Key(),
				"basic_predicate", prev.Predicate.Value,
				"reified_predicate", rec.Predicate.Value)
		}
		records[at] = rec
	}

	basic, err := c.catalog.RelationTypes.Run(src, query.Bindings{query.VarBase: rdf.IRI(nsBase(ns))})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.catalog.RelationTypes.Name(), err)
	}
	for i := range basic.Rows {
		pred := basic.Get(i, query.VarPred)
		label, err := c.cache.Resolve(pred.Value, ns)
		if err != nil {
			return nil, err
		}
		put(EdgeRecord{
			IRI:       basic.Get(i, query.VarIRI),
			Predicate: pred,
			Source:    basic.Get(i, query.VarSource),
			Target:    basic.Get(i, query.VarTarget),
			Attrs:     pgraph.Attributes{pgraph.KeyLabel: label},
			Kind:      EdgeBasic,
		})
	}

	reified, err := c.catalog.ReifiedRelations.Run(src, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.catalog.ReifiedRelations.Name(), err)
	}
	for i := range reified.Rows {
		id := reified.Get(i, query.VarIRI)
		props, err := c.catalog.RelationProperties.Run(src, query.Bindings{query.VarIRI: id})
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", c.catalog.RelationProperties.Name(), id.Key(), err)
		}
		attrs, err := c.aggregate(ns, id, props.PropertyRows())
		if err != nil {
			return nil, err
		}
		put(EdgeRecord{
			IRI:       id,
			Predicate: reified.Get(i, query.VarPred),
			Source:    reified.Get(i, query.VarSource),
			Target:    reified.Get(i, query.VarTarget),
			Attrs:     attrs,
			Kind:      EdgeReified,
		})
	}

	logger.Debug("Transformed edges",
		"basic", basic.Len(),
		"reified", reified.Len(),
		"records", len(records))

	return records, nil
}

func nsBase(ns rdf.Namespaces) string {
	base, _ := ns.Base()
	return base
}
