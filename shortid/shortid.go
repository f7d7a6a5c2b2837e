// Package shortid turns full identifiers into short, readable tokens using a
// namespace table. The functions are pure; Cache adds memoization for callers
// that shorten the same predicates many times.
package shortid

import (
	"errors"
	"strings"

	"github.com/c360studio/semgraph/rdf"
)

// ErrMissingBase is returned when the namespace table has no "base" entry.
var ErrMissingBase = errors.New("namespace table has no base entry")

// ShortID returns the short token for iri. A match against the base namespace yields
// the bare local name, any other prefix yields "prefix:local". The longest matching
// namespace wins. Identifiers outside every namespace fall back to LocalID.
func ShortID(iri string, ns rdf.Namespaces) (string, error) {
	if _, ok := ns.Base(); !ok {
		return "", ErrMissingBase
	}

	prefix, local := longestMatch(iri, ns, true)
	switch {
	case local == "":
		return LocalID(iri), nil
	case prefix == rdf.BaseKey:
		return local, nil
	default:
		return prefix + ":" + local, nil
	}
}

// LocalID returns the fragment after the last '#' or '/'. Trailing separators are
// ignored so that "http://example.org/thing/" yields "thing".
func LocalID(iri string) string {
	trimmed := strings.TrimRight(iri, "#/")
	if trimmed == "" {
		return iri
	}
	if i := strings.LastIndexAny(trimmed, "#/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// Pretty renders iri for display. It never needs a base: a declared prefix gives
// "prefix:local" and anything else is wrapped in angle brackets.
func Pretty(iri string, ns rdf.Namespaces) string {
	prefix, local := longestMatch(iri, ns, false)
	if local == "" {
		return "<" + iri + ">"
	}
	return prefix + ":" + local
}

// Expand reverses ShortID and Pretty for tokens produced under the same table.
func Expand(short string, ns rdf.Namespaces) string {
	if strings.HasPrefix(short, "<") && strings.HasSuffix(short, ">") {
		return short[1 : len(short)-1]
	}
	if strings.Contains(short, "://") {
		return short
	}
	if prefix, local, found := strings.Cut(short, ":"); found && prefix != rdf.BaseKey {
		if namespace, ok := ns[prefix]; ok {
			return namespace + local
		}
	}
	if base, ok := ns.Base(); ok {
		return base + short
	}
	return short
}

// longestMatch finds the namespace with the longest IRI that prefixes iri and still
// leaves a non-empty local part. The base wins a tie on length so a default prefix
// bound to the same IRI never shadows it; other ties go to the lexically smallest prefix.
func longestMatch(iri string, ns rdf.Namespaces, withBase bool) (prefix, local string) {
	bestLen := -1
	for _, p := range ns.Prefixes() {
		if p == rdf.BaseKey && !withBase {
			continue
		}
		namespace := ns[p]
		if namespace == "" || len(namespace) >= len(iri) || !strings.HasPrefix(iri, namespace) {
			continue
		}
		if len(namespace) > bestLen || (len(namespace) == bestLen && p == rdf.BaseKey) {
			bestLen = len(namespace)
			prefix, local = p, iri[len(namespace):]
		}
	}
	return prefix, local
}
