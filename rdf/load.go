package rdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	krdf "github.com/knakk/rdf"
	"golang.org/x/sync/errgroup"
)

// Format names an RDF serialization.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatRDFXML   Format = "rdfxml"
)

// ErrUnsupportedFormat is returned for serializations the loader cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported RDF format")

// maxParallelLoads bounds concurrent file decoding.
const maxParallelLoads = 4

// ParseFormat resolves a format name. Common aliases and file extensions are accepted.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	case "rdfxml", "rdf/xml", "xml", "rdf", "owl":
		return FormatRDFXML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

func (f Format) knakk() (krdf.Format, error) {
	switch f {
	case FormatTurtle:
		return krdf.Turtle, nil
	case FormatNTriples:
		return krdf.NTriples, nil
	case FormatRDFXML:
		return krdf.RDFXML, nil
	}
	return krdf.Turtle, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

var (
	prefixDecl = regexp.MustCompile(`(?mi)^\s*@?prefix\s+([A-Za-z][\w.-]*)?:\s*<([^>]*)>`)
	baseDecl   = regexp.MustCompile(`(?mi)^\s*@?base\s+<([^>]*)>`)

	// directiveLine matches a line that may appear before the first statement.
	directiveLine = regexp.MustCompile(`(?i)^\s*(#|@?prefix\s|@?base\s|$)`)
)

// Decode parses a complete document. Turtle prefix declarations are bound on the
// returned graph, and an @base declaration binds the "base" namespace.
func Decode(r io.Reader, format Format) (*Graph, error) {
	kf, err := format.knakk()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	g := NewGraph()
	if format == FormatTurtle {
		bindDeclarations(g, data)
	}

	dec := krdf.NewTripleDecoder(bytes.NewReader(data), kf)
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s (triple %d): %w", format, g.Len()+1, err)
		}
		t, err := fromKnakk(tr)
		if err != nil {
			return nil, err
		}
		g.Add(t)
	}

	return g, nil
}

// DecodeString is a convenience wrapper around Decode.
func DecodeString(doc string, format Format) (*Graph, error) {
	return Decode(strings.NewReader(doc), format)
}

func bindDeclarations(g *Graph, data []byte) {
	header := directiveHeader(data)
	for _, m := range prefixDecl.FindAllSubmatch(header, -1) {
		g.Bind(string(m[1]), string(m[2]))
	}
	if m := baseDecl.FindSubmatch(header); m != nil {
		if _, ok := g.namespaces[BaseKey]; !ok {
			g.Bind(BaseKey, string(m[1]))
		}
	}
}

// directiveHeader returns the leading block of blank lines, comments and prefix or
// base directives. Declarations after the first statement are not bound.
func directiveHeader(data []byte) []byte {
	rest := data
	for len(rest) > 0 {
		line := rest
		next := len(rest)
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, next = rest[:i], i+1
		}
		if !directiveLine.Match(line) {
			break
		}
		rest = rest[next:]
	}
	return data[:len(data)-len(rest)]
}

func fromKnakk(tr krdf.Triple) (Triple, error) {
	s, err := termFromKnakk(tr.Subj)
	if err != nil {
		return Triple{}, fmt.Errorf("subject: %w", err)
	}
	p, err := termFromKnakk(tr.Pred)
	if err != nil {
		return Triple{}, fmt.Errorf("predicate: %w", err)
	}
	o, err := termFromKnakk(tr.Obj)
	if err != nil {
		return Triple{}, fmt.Errorf("object: %w", err)
	}
	return Triple{Subject: s, Predicate: p, Object: o}, nil
}

func termFromKnakk(t krdf.Term) (Term, error) {
	switch v := t.(type) {
	case krdf.IRI:
		return IRI(v.String()), nil
	case krdf.Blank:
		return Blank(v.String()), nil
	case krdf.Literal:
		if lang := v.Lang(); lang != "" {
			return LangString(v.String(), lang), nil
		}
		return Literal(v.String(), v.DataType.String()), nil
	}
	return Term{}, fmt.Errorf("unsupported term type %T", t)
}

// LoadFile decodes one file. An empty format is inferred from the extension.
func LoadFile(path string, format Format) (*Graph, error) {
	if format == "" {
		f, err := FormatForPath(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		format = f
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ExpandPaths resolves doublestar glob patterns. Patterns without glob metacharacters
// are returned as-is so that missing files surface as open errors.
func ExpandPaths(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches := []string{pattern}
		if strings.ContainsAny(pattern, "*?[{") {
			m, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", pattern, err)
			}
			if len(m) == 0 {
				return nil, fmt.Errorf("glob %q matched no files", pattern)
			}
			matches = m
		}
		for _, path := range matches {
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
	}
	return out, nil
}

// LoadFiles decodes every path concurrently and merges the results in argument order.
func LoadFiles(ctx context.Context, patterns []string, format Format) (*Graph, error) {
	paths, err := ExpandPaths(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("no input files")
	}

	graphs := make([]*Graph, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelLoads)
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			g, err := LoadFile(path, format)
			if err != nil {
				return err
			}
			graphs[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := NewGraph()
	for _, g := range graphs {
		merged.AddAll(g)
	}
	return merged, nil
}
