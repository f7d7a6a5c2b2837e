package collapse

import (
	"github.com/c360studio/semgraph/query"
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/shortid"
)

// Predicate is a predicate IRI with its display form.
type Predicate struct {
	IRI     string `json:"iri"`
	Display string `json:"display"`
}

// Suggestion splits the predicates of a source by the kind of their objects.
type Suggestion struct {
	// Selected predicates only ever point at literals and are candidates for collapsing.
	Selected []Predicate `json:"selected"`
	// Available predicates only ever point at resources.
	Available []Predicate `json:"available"`
}

// IRIs returns the selected predicate IRIs.
func (s Suggestion) IRIs() []string {
	out := make([]string, len(s.Selected))
	for i, p := range s.Selected {
		out[i] = p.IRI
	}
	return out
}

// Suggest classifies every predicate of src. Predicates used with both literal and
// resource objects appear in neither list. Order follows first use in the source.
func Suggest(src query.Source, ns rdf.Namespaces) Suggestion {
	toLiteral := make(map[rdf.Term]bool)
	toResource := make(map[rdf.Term]bool)
	var order []rdf.Term

	for _, tr := range src.Match(rdf.Term{}, rdf.Term{}, rdf.Term{}) {
		p := tr.Predicate
		if !toLiteral[p] && !toResource[p] {
			order = append(order, p)
		}
		if tr.Object.IsLiteral() {
			toLiteral[p] = true
		} else {
			toResource[p] = true
		}
	}

	var s Suggestion
	for _, p := range order {
		pred := Predicate{IRI: p.Value, Display: shortid.Pretty(p.Value, ns)}
		switch {
		case toLiteral[p] && !toResource[p]:
			s.Selected = append(s.Selected, pred)
		case toResource[p] && !toLiteral[p]:
			s.Available = append(s.Available, pred)
		}
	}
	return s
}

// Subjects returns the keys of every subject in src, suitable as the protected set
// for Collapse.
func Subjects(src query.Source) []string {
	terms := src.Subjects()
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Key()
	}
	return out
}
