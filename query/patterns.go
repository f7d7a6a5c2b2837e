package query

import (
	"strconv"

	"github.com/c360studio/semgraph/rdf"
	"github.com/cespare/xxhash/v2"
)

var (
	rdfType      = rdf.IRI(rdf.RDFType)
	rdfStatement = rdf.IRI(rdf.RDFStatement)
	rdfSubject   = rdf.IRI(rdf.RDFSubject)
	rdfPredicate = rdf.IRI(rdf.RDFPredicate)
	rdfObject    = rdf.IRI(rdf.RDFObject)

	// DefaultRelationBase prefixes basic relation identifiers when no base is bound.
	DefaultRelationBase = "urn:semgraph:relation:"
)

func isReified(src Source, t rdf.Term) bool {
	return len(src.Match(t, rdfSubject, rdf.Term{})) > 0
}

func isStatement(src Source, t rdf.Term) bool {
	return len(src.Match(t, rdfType, rdfStatement)) > 0
}

func structural(p rdf.Term) bool {
	return p == rdfType || p == rdfSubject || p == rdfPredicate || p == rdfObject
}

// nodeIRIs selects every typed subject that is not a reified statement.
func nodeIRIs(src Source, _ Bindings) (*Table, error) {
	t := NewTable(VarIRI)
	for _, s := range src.Subjects() {
		if !s.IsResource() || len(src.Match(s, rdfType, rdf.Term{})) == 0 {
			continue
		}
		if isStatement(src, s) || isReified(src, s) {
			continue
		}
		t.Append(s)
	}
	return t, nil
}

func nodeTypes(src Source, b Bindings) (*Table, error) {
	iri, err := b.Require(VarIRI)
	if err != nil {
		return nil, err
	}
	t := NewTable(VarType)
	for _, tr := range src.Match(iri, rdfType, rdf.Term{}) {
		t.Append(tr.Object)
	}
	return t, nil
}

// literalProperties selects the literal-valued statements about ?iri.
func literalProperties(src Source, b Bindings) (*Table, error) {
	iri, err := b.Require(VarIRI)
	if err != nil {
		return nil, err
	}
	t := NewTable(VarPred, VarObject)
	for _, tr := range src.Match(iri, rdf.Term{}, rdf.Term{}) {
		if tr.Object.IsLiteral() {
			t.Append(tr.Predicate, tr.Object)
		}
	}
	return t, nil
}

// relationTypes selects statements between two resources. A basic relation has no
// identifier of its own, so one is derived from the statement content.
func relationTypes(src Source, b Bindings) (*Table, error) {
	base := DefaultRelationBase
	if t, ok := b[VarBase]; ok && !t.IsZero() {
		base = t.Value
	}

	t := NewTable(VarIRI, VarPred, VarSource, VarTarget)
	for _, tr := range src.Match(rdf.Term{}, rdf.Term{}, rdf.Term{}) {
		if !tr.Object.IsResource() || structural(tr.Predicate) || isReified(src, tr.Subject) {
			continue
		}
		t.Append(RelationIRI(base, tr), tr.Predicate, tr.Subject, tr.Object)
	}
	return t, nil
}

// RelationIRI derives the identifier of a basic relation from its statement.
func RelationIRI(base string, tr rdf.Triple) rdf.Term {
	return rdf.IRI(base + strconv.FormatUint(xxhash.Sum64String(tr.NTriples()), 16))
}

// reifiedRelations selects relation instances that name a subject, a predicate and
// an object. Incomplete reifications do not match.
func reifiedRelations(src Source, _ Bindings) (*Table, error) {
	t := NewTable(VarIRI, VarPred, VarSource, VarTarget)
	seen := make(map[rdf.Term]bool)
	for _, st := range src.Match(rdf.Term{}, rdfSubject, rdf.Term{}) {
		inst := st.Subject
		if seen[inst] {
			continue
		}
		seen[inst] = true

		for _, s := range src.Match(inst, rdfSubject, rdf.Term{}) {
			for _, p := range src.Match(inst, rdfPredicate, rdf.Term{}) {
				for _, o := range src.Match(inst, rdfObject, rdf.Term{}) {
					t.Append(inst, p.Object, s.Object, o.Object)
				}
			}
		}
	}
	return t, nil
}
