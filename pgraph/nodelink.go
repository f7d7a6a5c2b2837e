package pgraph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/c360studio/semgraph/rdf"
)

// Node-link field names, compatible with networkx node_link_data.
const (
	linkID      = "id"
	linkValue   = "value"
	linkSource  = "source"
	linkTarget  = "target"
	linkKey     = "key"
	linkTriples = "triples"
)

type nodeLink struct {
	Directed   bool             `json:"directed"`
	Multigraph bool             `json:"multigraph"`
	Graph      map[string]any   `json:"graph"`
	Nodes      []map[string]any `json:"nodes"`
	Links      []map[string]any `json:"links"`
}

// MarshalJSON encodes the graph in node-link form. Node attributes sit beside the
// "id" field, edge attributes beside "source", "target" and "key". Edge triples are
// written as N-Triples lines.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := nodeLink{
		Directed:   true,
		Multigraph: true,
		Graph:      map[string]any{},
		Nodes:      make([]map[string]any, 0, len(g.nodeOrder)),
		Links:      make([]map[string]any, 0, len(g.edges)),
	}

	for _, n := range g.Nodes() {
		m := make(map[string]any, len(n.Attrs)+2)
		for k, v := range n.Attrs {
			m[k] = v
		}
		if n.Value != nil {
			m[linkValue] = n.Value
		}
		m[linkID] = n.Key
		doc.Nodes = append(doc.Nodes, m)
	}

	for _, e := range g.edges {
		m := make(map[string]any, len(e.Attrs)+4)
		for k, v := range e.Attrs {
			m[k] = v
		}
		if len(e.Triples) > 0 {
			lines := make([]string, len(e.Triples))
			for i, tr := range e.Triples {
				lines[i] = tr.NTriples()
			}
			m[linkTriples] = lines
		}
		m[linkSource] = e.Source
		m[linkTarget] = e.Target
		m[linkKey] = e.ID
		doc.Links = append(doc.Links, m)
	}

	return json.Marshal(doc)
}

// UnmarshalJSON decodes node-link JSON produced by MarshalJSON. Attribute values
// come back with JSON types: tuples as []any and numbers as float64.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc nodeLink
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*g = *New()
	for i, m := range doc.Nodes {
		key, ok := m[linkID].(string)
		if !ok {
			return fmt.Errorf("node %d: missing string id", i)
		}
		attrs := make(Attributes, len(m))
		for k, v := range m {
			if k != linkID && k != linkValue {
				attrs[k] = v
			}
		}
		n := g.AddNode(key, attrs)
		n.Value = m[linkValue]
	}

	for i, m := range doc.Links {
		source, _ := m[linkSource].(string)
		target, _ := m[linkTarget].(string)
		id, _ := m[linkKey].(string)

		var triples []rdf.Triple
		if raw, ok := m[linkTriples].([]any); ok {
			lines := make([]string, 0, len(raw))
			for _, line := range raw {
				if s, ok := line.(string); ok {
					lines = append(lines, s)
				}
			}
			parsed, err := rdf.DecodeString(strings.Join(lines, "\n")+"\n", rdf.FormatNTriples)
			if err != nil {
				return fmt.Errorf("link %d triples: %w", i, err)
			}
			triples = parsed.Triples()
		}

		attrs := make(Attributes, len(m))
		for k, v := range m {
			switch k {
			case linkSource, linkTarget, linkKey, linkTriples:
			default:
				attrs[k] = v
			}
		}
		if _, err := g.AddEdge(source, target, id, attrs, triples...); err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
	}
	return nil
}
