package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/shortid"
)

// Sentinel errors for conversion failures.
var (
	// ErrMissingBase is returned before any transformation when the namespace table
	// has no base entry.
	ErrMissingBase = shortid.ErrMissingBase

	// ErrHeterogeneousValues is returned when one subject has values of different
	// kinds under the same predicate.
	ErrHeterogeneousValues = errors.New("heterogeneous values for predicate")

	// ErrMalformedEdge is returned for an edge record lacking an identifier, an
	// endpoint or attributes.
	ErrMalformedEdge = errors.New("malformed edge record")
)

// HeterogeneousValuesError reports the offending subject and predicate. Datatypes
// lists the datatypes seen among values of kind other.
type HeterogeneousValuesError struct {
	Subject   string
	Predicate string
	Kinds     []rdf.Kind
	Datatypes []string
}

func (e *HeterogeneousValuesError) Error() string {
	kinds := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		kinds[i] = k.String()
		if k == rdf.KindOther && len(e.Datatypes) > 0 {
			kinds[i] += " (" + strings.Join(e.Datatypes, ", ") + ")"
		}
	}
	return fmt.Sprintf("%s: %s on %s mixes %s", ErrHeterogeneousValues, e.Predicate, e.Subject, strings.Join(kinds, ", "))
}

func (e *HeterogeneousValuesError) Unwrap() error { return ErrHeterogeneousValues }

// MalformedEdgeError names the edge and the fields it lacks.
type MalformedEdgeError struct {
	IRI     string
	Missing []string
}

func (e *MalformedEdgeError) Error() string {
	iri := e.IRI
	if iri == "" {
		iri = "<unnamed>"
	}
	return fmt.Sprintf("%s %s: missing %s", ErrMalformedEdge, iri, strings.Join(e.Missing, ", "))
}

func (e *MalformedEdgeError) Unwrap() error { return ErrMalformedEdge }
