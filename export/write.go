package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	ssexport "github.com/c360studio/semstreams/vocabulary/export"

	"github.com/c360studio/semgraph/pgraph"
	"github.com/c360studio/semgraph/rdf"
	"github.com/c360studio/semgraph/vocabulary/semgraph"
)

// Options controls Write.
type Options struct {
	// Namespaces expands short attribute keys back to predicate IRIs.
	Namespaces rdf.Namespaces

	// BaseIRI is handed to the RDF serializer. Defaults to the base namespace.
	BaseIRI string

	Profile Profile

	// Indent pretty-prints node-link JSON.
	Indent bool
}

func (o Options) baseIRI() string {
	if o.BaseIRI != "" {
		return o.BaseIRI
	}
	if base, ok := o.Namespaces.Base(); ok {
		return base
	}
	return semgraph.EntityNamespace
}

// Write serializes g in the requested format.
func Write(w io.Writer, g *pgraph.Graph, format Format, opts Options) error {
	switch format {
	case FormatNodeLink, "":
		enc := json.NewEncoder(w)
		if opts.Indent {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode node-link: %w", err)
		}
		return nil

	case FormatNTriples:
		var sb strings.Builder
		for _, tr := range GraphRDF(g, opts.Namespaces, opts.Profile) {
			sb.WriteString(tr.NTriples())
			sb.WriteByte('\n')
		}
		_, err := io.WriteString(w, sb.String())
		return err

	case FormatTurtle, FormatJSONLD:
		out, err := ssexport.SerializeToString(GraphTriples(g, opts.Namespaces, opts.Profile), serializerFormat(format),
			ssexport.WithBaseIRI(opts.baseIRI()))
		if err != nil {
			return fmt.Errorf("serialize %s: %w", format, err)
		}
		_, err = io.WriteString(w, out)
		return err
	}
	return fmt.Errorf("unsupported format: %s", format)
}

// Marshal is Write into a byte slice.
func Marshal(g *pgraph.Graph, format Format, opts Options) ([]byte, error) {
	var sb strings.Builder
	if err := Write(&sb, g, format, opts); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func serializerFormat(format Format) ssexport.Format {
	if format == FormatJSONLD {
		return ssexport.JSONLD
	}
	return ssexport.Turtle
}

func toString(v any) string {
	return fmt.Sprint(v)
}
