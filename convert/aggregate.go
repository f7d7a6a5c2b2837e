package convert

import (
	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/query"
	"github.com/c360studio/semgraph/rdf"
)

// Aggregate merges property rows into one attribute map keyed by short predicate
// names. A predicate with one row yields a string, several rows yield a []string in
// row order; all values of one predicate must share a kind. The map always holds
// the subject identifier under pgraph.KeyIRI. Aggregate uses the explicit namespace
// table and fills the converter's cache.
func (c *Converter) Aggregate(id rdf.Term, rows []query.PropertyRow) (pgraph.Attributes, error) {
	ns, err := c.Namespaces(nil)
	if err != nil {
		return nil, err
	}
	return c.aggregate(ns, id, rows)
}

type predicateGroup struct {
	predicate rdf.Term
	values    []rdf.Term
}

func (c *Converter) aggregate(ns rdf.Namespaces, id rdf.Term, rows []query.PropertyRow) (pgraph.Attributes, error) {
	var groups []*predicateGroup
	byPred := make(map[rdf.Term]*predicateGroup)
	for _, row := range rows {
		grp, ok := byPred[row.Predicate]
		if !ok {
			grp = &predicateGroup{predicate: row.Predicate}
			byPred[row.Predicate] = grp
			groups = append(groups, grp)
		}
		grp.values = append(grp.values, row.Value)
	}

	attrs := make(pgraph.Attributes, len(groups)+1)
	for _, grp := range groups {
		key, err := c.cache.Resolve(grp.predicate.Value, ns)
		if err != nil {
			return nil, err
		}
		if key == pgraph.KeyIRI {
			c.logger.Warn("Predicate shortens to the reserved iri key, skipping",
				"subject", id.Key(),
				"predicate", grp.predicate.Value)
			continue
		}
		if _, taken := attrs[key]; taken {
			c.logger.Warn("Predicates share a short key, later one wins",
				"subject", id.Key(),
				"key", key,
				"predicate", grp.predicate.Value)
		}

		if len(grp.values) == 1 {
			attrs[key] = grp.values[0].String()
			continue
		}

		if kinds, datatypes := distinctKinds(grp.values); len(kinds) > 1 || len(datatypes) > 1 {
			return nil, &HeterogeneousValuesError{
				Subject:   id.Key(),
				Predicate: grp.predicate.Value,
				Kinds:     kinds,
				Datatypes: datatypes,
			}
		}
		values := make([]string, len(grp.values))
		for i, v := range grp.values {
			values[i] = v.String()
		}
		attrs[key] = values
	}

	attrs[pgraph.KeyIRI] = id.Key()
	return attrs, nil
}

// distinctKinds lists the kinds present in values in first-seen order. Literals
// without a native mapping only agree when their datatypes match, so their
// datatypes are listed too.
func distinctKinds(values []rdf.Term) ([]rdf.Kind, []string) {
	var (
		kinds     []rdf.Kind
		datatypes []string
	)
	seenKind := make(map[rdf.Kind]bool)
	seenType := make(map[string]bool)
	for _, v := range values {
		if !seenKind[v.Kind] {
			seenKind[v.Kind] = true
			kinds = append(kinds, v.Kind)
		}
		if v.Kind == rdf.KindOther && !seenType[v.Datatype] {
			seenType[v.Datatype] = true
			datatypes = append(datatypes, v.Datatype)
		}
	}
	return kinds, datatypes
}
