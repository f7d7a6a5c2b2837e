package rdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/vocabulary"
)

// FromMessageTriples builds a graph from semstreams triples. Dotted entity IDs and
// predicate names are placed under base; predicates registered with a standard IRI use
// that IRI instead. String objects that name a subject of the same batch, or that are
// absolute IRIs, become resources. Other objects become typed literals.
func FromMessageTriples(triples []message.Triple, base string) *Graph {
	g := NewGraph()
	if base != "" {
		g.Bind(BaseKey, base)
	}

	subjects := make(map[string]bool, len(triples))
	for _, t := range triples {
		subjects[t.Subject] = true
	}

	for _, t := range triples {
		g.Add(Triple{
			Subject:   entityTerm(t.Subject, base),
			Predicate: predicateTerm(t.Predicate, base),
			Object:    objectTerm(t.Object, base, subjects),
		})
	}
	return g
}

func isAbsoluteIRI(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "urn:")
}

func entityTerm(id, base string) Term {
	if isAbsoluteIRI(id) {
		return IRI(id)
	}
	return IRI(base + id)
}

func predicateTerm(name, base string) Term {
	if isAbsoluteIRI(name) {
		return IRI(name)
	}
	if meta := vocabulary.GetPredicateMetadata(name); meta != nil && meta.StandardIRI != "" {
		return IRI(meta.StandardIRI)
	}
	return IRI(base + name)
}

func objectTerm(v any, base string, subjects map[string]bool) Term {
	switch val := v.(type) {
	case string:
		if subjects[val] {
			return entityTerm(val, base)
		}
		if isAbsoluteIRI(val) && !strings.ContainsAny(val, " \t\n") {
			return IRI(val)
		}
		return String(val)
	case bool:
		return Boolean(val)
	case int:
		return Integer(int64(val))
	case int32:
		return Integer(int64(val))
	case int64:
		return Integer(val)
	case float32:
		return Double(float64(val))
	case float64:
		return Double(val)
	case time.Time:
		return DateTime(val)
	case nil:
		return String("")
	}
	return String(fmt.Sprint(v))
}
