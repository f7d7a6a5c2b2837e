// Package collapse folds literal-valued predicates of a built graph into attributes
// of their subject nodes and prunes the object nodes that are left behind.
package collapse

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
)

// ErrNonIRIPredicate is returned when an edge carries a triple whose predicate is not an IRI.
var ErrNonIRIPredicate = errors.New("predicate must be an IRI")

// PredicateError identifies the edge holding the offending triple.
type PredicateError struct {
	Source    string
	Target    string
	Predicate rdf.Term
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("%s: edge %s -> %s has %s predicate %q",
		ErrNonIRIPredicate, e.Source, e.Target, e.Predicate.Kind, e.Predicate.String())
}

func (e *PredicateError) Unwrap() error { return ErrNonIRIPredicate }

type options struct {
	logger *slog.Logger
}

// Option configures Collapse.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Collapse rewrites g in place and returns it. For every edge triple whose predicate
// is in predicates, the target's value (its literal value, else its key) is stored
// on the source node under the full predicate IRI. The first value seen for a
// (source, predicate) pair is kept. Every target visited this way is then removed
// along with its edges, unless its key is listed in subjects.
//
// A triple with a non-IRI predicate aborts before any node is removed; attributes
// already written stay on their nodes.
func Collapse(g *pgraph.Graph, predicates []string, subjects []string, opts ...Option) (*pgraph.Graph, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	collapsible := toSet(predicates)
	protected := toSet(subjects)

	type slot struct{ source, predicate string }
	written := make(map[slot]bool)
	visited := make(map[string]bool)
	var found []string

	for _, e := range g.Edges() {
		for _, tr := range e.Triples {
			if !tr.Predicate.IsIRI() {
				return g, &PredicateError{Source: e.Source, Target: e.Target, Predicate: tr.Predicate}
			}
			p := tr.Predicate.Value
			if !collapsible[p] {
				continue
			}

			source, ok := g.Node(e.Source)
			if !ok {
				continue
			}
			target, ok := g.Node(e.Target)
			if !ok {
				continue
			}

			if s := (slot{e.Source, p}); !written[s] {
				written[s] = true
				source.Attrs[p] = target.ValueOrKey()
			}
			if !visited[e.Target] {
				visited[e.Target] = true
				found = append(found, e.Target)
			}
		}
	}

	var remove []string
	for _, key := range found {
		if !protected[key] {
			remove = append(remove, key)
		}
	}
	removed := g.RemoveNodes(remove)

	o.logger.Debug("Collapsed predicates",
		"predicates", len(collapsible),
		"attributes", len(written),
		"objects", len(found),
		"removed", removed)

	return g, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
