package export

import (
	"sort"
	"strings"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/shortid"
	"github.com/c360studio/semgraph/vocabulary/semgraph"
)

// GraphRDF turns a property graph back into RDF statements.
//
// Node attributes are expanded to predicate IRIs through ns; keys that already are
// IRIs (collapsed predicates) are kept. Tuples yield one statement per value. Edges
// that stand for statements (basic relations and term graph edges) yield those
// statements. Reified edges become statements about the edge identifier using the
// rdf:subject, rdf:predicate and rdf:object vocabulary plus their attributes.
func GraphRDF(g *pgraph.Graph, ns rdf.Namespaces, profile Profile) []rdf.Triple {
	cfg := GetProfileConfig(profile)
	out := rdf.NewGraph()

	for _, n := range g.Nodes() {
		if n.Value != nil {
			continue
		}
		subject := resourceTerm(n.Key)
		if cfg.TypeNodes {
			out.Add(typeTriple(subject, semgraph.ClassNode))
		}
		for _, tr := range attributeTriples(subject, n.Attrs, ns) {
			out.Add(tr)
		}
	}

	for _, e := range g.Edges() {
		_, labeled := e.Attrs[pgraph.KeyLabel]
		if e.ID == "" || labeled {
			for _, tr := range e.Triples {
				out.Add(tr)
			}
			if len(e.Triples) == 0 && labeled {
				label, _ := e.Attrs[pgraph.KeyLabel].(string)
				out.Add(rdf.Triple{
					Subject:   resourceTerm(e.Source),
					Predicate: rdf.IRI(shortid.Expand(label, ns)),
					Object:    resourceTerm(e.Target),
				})
			}
			continue
		}

		id := resourceTerm(e.ID)
		if cfg.TypeEdges {
			out.Add(typeTriple(id, semgraph.ClassEdge))
		}
		out.Add(rdf.Triple{Subject: id, Predicate: vocabIRI(semgraph.EdgeSource), Object: resourceTerm(e.Source)})
		for _, tr := range e.Triples {
			out.Add(rdf.Triple{Subject: id, Predicate: vocabIRI(semgraph.EdgeLabel), Object: tr.Predicate})
		}
		out.Add(rdf.Triple{Subject: id, Predicate: vocabIRI(semgraph.EdgeTarget), Object: resourceTerm(e.Target)})
		for _, tr := range attributeTriples(id, e.Attrs, ns) {
			out.Add(tr)
		}
	}

	return out.Triples()
}

// GraphTriples is GraphRDF in semstreams form. Reification statements use the
// dotted semgraph predicates so the vocabulary registry maps them on export.
func GraphTriples(g *pgraph.Graph, ns rdf.Namespaces, profile Profile) []message.Triple {
	dotted := map[string]string{
		vocabIRI(semgraph.EdgeSource).Value: semgraph.EdgeSource,
		vocabIRI(semgraph.EdgeTarget).Value: semgraph.EdgeTarget,
		vocabIRI(semgraph.EdgeLabel).Value:  semgraph.EdgeLabel,
		vocabIRI(semgraph.NodeType).Value:   semgraph.NodeType,
	}

	now := time.Now()
	triples := GraphRDF(g, ns, profile)
	out := make([]message.Triple, 0, len(triples))
	for _, tr := range triples {
		predicate := tr.Predicate.Value
		if name, ok := dotted[predicate]; ok {
			predicate = name
		}
		var object any = tr.Object.String()
		if tr.Object.IsLiteral() {
			object = tr.Object.Native()
		}
		out = append(out, message.Triple{
			Subject:    tr.Subject.String(),
			Predicate:  predicate,
			Object:     object,
			Source:     "semgraph.export",
			Timestamp:  now,
			Confidence: 1.0,
		})
	}
	return out
}

func vocabIRI(predicate string) rdf.Term {
	return rdf.IRI(semgraph.PredicateIRI(predicate))
}

func resourceTerm(key string) rdf.Term {
	if strings.HasPrefix(key, "_:") {
		return rdf.Blank(key)
	}
	return rdf.IRI(key)
}

// attributeTriples expands attributes in sorted key order. Reserved keys are skipped.
func attributeTriples(subject rdf.Term, attrs pgraph.Attributes, ns rdf.Namespaces) []rdf.Triple {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k != pgraph.KeyIRI && k != pgraph.KeyLabel {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []rdf.Triple
	for _, k := range keys {
		predicate := rdf.IRI(expandKey(k, ns))
		for _, v := range attributeValues(attrs[k]) {
			out = append(out, rdf.Triple{Subject: subject, Predicate: predicate, Object: v})
		}
	}
	return out
}

func expandKey(key string, ns rdf.Namespaces) string {
	if strings.Contains(key, "://") {
		return key
	}
	return shortid.Expand(key, ns)
}

func attributeValues(v any) []rdf.Term {
	switch val := v.(type) {
	case []string:
		out := make([]rdf.Term, len(val))
		for i, s := range val {
			out[i] = rdf.String(s)
		}
		return out
	case []any:
		var out []rdf.Term
		for _, item := range val {
			out = append(out, attributeValues(item)...)
		}
		return out
	case string:
		if strings.Contains(val, "://") && !strings.ContainsAny(val, " \t\n") {
			return []rdf.Term{rdf.IRI(val)}
		}
		return []rdf.Term{rdf.String(val)}
	case int64:
		return []rdf.Term{rdf.Integer(val)}
	case int:
		return []rdf.Term{rdf.Integer(int64(val))}
	case float64:
		return []rdf.Term{rdf.Double(val)}
	case bool:
		return []rdf.Term{rdf.Boolean(val)}
	case time.Time:
		return []rdf.Term{rdf.DateTime(val)}
	case nil:
		return nil
	}
	return []rdf.Term{rdf.String(toString(v))}
}
