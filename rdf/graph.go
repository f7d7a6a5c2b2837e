package rdf

import (
	"sort"
	"strings"
)

// BaseKey is the namespace table entry used to shorten identifiers without a prefix.
const BaseKey = "base"

// Namespaces maps prefixes to namespace IRIs.
type Namespaces map[string]string

// Base returns the base namespace and whether one is declared.
func (ns Namespaces) Base() (string, bool) {
	base, ok := ns[BaseKey]
	return base, ok && base != ""
}

// Clone returns a copy of the table.
func (ns Namespaces) Clone() Namespaces {
	out := make(Namespaces, len(ns))
	for k, v := range ns {
		out[k] = v
	}
	return out
}

// Prefixes returns the declared prefixes in sorted order.
func (ns Namespaces) Prefixes() []string {
	out := make([]string, 0, len(ns))
	for k := range ns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Graph is an in-memory set of triples. Insertion order is preserved and duplicate
// triples are ignored. Graph is not safe for concurrent mutation.
type Graph struct {
	triples    []Triple
	seen       map[Triple]struct{}
	bySubject  map[Term][]int
	byPred     map[Term][]int
	byObject   map[Term][]int
	namespaces Namespaces
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		seen:       make(map[Triple]struct{}),
		bySubject:  make(map[Term][]int),
		byPred:     make(map[Term][]int),
		byObject:   make(map[Term][]int),
		namespaces: make(Namespaces),
	}
}

// Add inserts a triple. It returns false when the triple was already present.
func (g *Graph) Add(tr Triple) bool {
	if _, ok := g.seen[tr]; ok {
		return false
	}
	idx := len(g.triples)
	g.triples = append(g.triples, tr)
	g.seen[tr] = struct{}{}
	g.bySubject[tr.Subject] = append(g.bySubject[tr.Subject], idx)
	g.byPred[tr.Predicate] = append(g.byPred[tr.Predicate], idx)
	g.byObject[tr.Object] = append(g.byObject[tr.Object], idx)
	return true
}

// AddAll inserts every triple of another graph and merges its namespaces. Prefixes
// already bound on g are kept.
func (g *Graph) AddAll(other *Graph) {
	for _, tr := range other.triples {
		g.Add(tr)
	}
	for prefix, ns := range other.namespaces {
		if _, ok := g.namespaces[prefix]; !ok {
			g.namespaces[prefix] = ns
		}
	}
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns all triples in insertion order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Match returns the triples matching the pattern. A zero term is a wildcard.
func (g *Graph) Match(s, p, o Term) []Triple {
	candidates := g.candidates(s, p, o)
	out := make([]Triple, 0, len(candidates))
	for _, idx := range candidates {
		tr := g.triples[idx]
		if !s.IsZero() && tr.Subject != s {
			continue
		}
		if !p.IsZero() && tr.Predicate != p {
			continue
		}
		if !o.IsZero() && tr.Object != o {
			continue
		}
		out = append(out, tr)
	}
	return out
}

// candidates picks the smallest index list for the bound positions.
func (g *Graph) candidates(s, p, o Term) []int {
	var best []int
	found := false
	consider := func(idx map[Term][]int, t Term) {
		if t.IsZero() {
			return
		}
		list := idx[t]
		if !found || len(list) < len(best) {
			best = list
			found = true
		}
	}
	consider(g.bySubject, s)
	consider(g.byPred, p)
	consider(g.byObject, o)
	if found {
		return best
	}
	all := make([]int, len(g.triples))
	for i := range all {
		all[i] = i
	}
	return all
}

// Subjects returns the distinct subjects in first-seen order.
func (g *Graph) Subjects() []Term {
	return g.distinct(func(tr Triple) Term { return tr.Subject })
}

// Predicates returns the distinct predicates in first-seen order.
func (g *Graph) Predicates() []Term {
	return g.distinct(func(tr Triple) Term { return tr.Predicate })
}

func (g *Graph) distinct(pick func(Triple) Term) []Term {
	seen := make(map[Term]struct{})
	var out []Term
	for _, tr := range g.triples {
		t := pick(tr)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Bind associates a prefix with a namespace IRI, replacing any previous binding.
func (g *Graph) Bind(prefix, namespace string) {
	g.namespaces[strings.TrimSuffix(prefix, ":")] = namespace
}

// Namespaces returns a copy of the bound namespace table.
func (g *Graph) Namespaces() Namespaces {
	return g.namespaces.Clone()
}
