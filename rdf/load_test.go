package rdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"turtle", FormatTurtle},
		{".ttl", FormatTurtle},
		{"NT", FormatNTriples},
		{"n-triples", FormatNTriples},
		{"rdf", FormatRDFXML},
		{".owl", FormatRDFXML},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("csv")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = FormatForPath("data/graph.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeNTriples(t *testing.T) {
	doc := `<http://example.org/a> <http://example.org/p> <http://example.org/b> .
<http://example.org/a> <http://example.org/q> "7"^^<http://www.w3.org/2001/XMLSchema#integer> .
_:n1 <http://example.org/q> "hello"@en .
`
	g, err := DecodeString(doc, FormatNTriples)
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	triples := g.Triples()
	assert.Equal(t, IRI("http://example.org/b"), triples[0].Object)
	assert.Equal(t, KindInteger, triples[1].Object.Kind)
	assert.Equal(t, int64(7), triples[1].Object.Native())
	assert.Equal(t, KindBlank, triples[2].Subject.Kind)
	assert.Equal(t, "n1", triples[2].Subject.Value)
	assert.Equal(t, "en", triples[2].Object.Lang)
}

func TestDecodeTurtleBindsPrefixes(t *testing.T) {
	g, err := LoadFile(filepath.Join("testdata", "people.ttl"), "")
	require.NoError(t, err)

	ns := g.Namespaces()
	assert.Equal(t, "http://example.org/", ns["ex"])
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", ns["foaf"])

	knows := g.Match(IRI("http://example.org/alice"), IRI("http://xmlns.com/foaf/0.1/knows"), Term{})
	require.Len(t, knows, 1)
	assert.Equal(t, IRI("http://example.org/bob"), knows[0].Object)

	types := g.Match(Term{}, IRI(RDFType), Term{})
	assert.Len(t, types, 2)
}

func TestDecodeTurtleBase(t *testing.T) {
	doc := "@base <http://example.org/> .\n<http://example.org/a> <http://example.org/p> \"x\" .\n"
	g, err := DecodeString(doc, FormatTurtle)
	require.NoError(t, err)
	base, ok := g.Namespaces().Base()
	assert.True(t, ok)
	assert.Equal(t, "http://example.org/", base)
}

func TestDecodeTurtleIgnoresDirectivesInLiterals(t *testing.T) {
	doc := `# people
@prefix ex: <http://example.org/> .

ex:alice ex:note """first line
prefix bogus: <http://bogus.example/>
@base <http://bogus.example/base/> .
""" .
`
	g, err := DecodeString(doc, FormatTurtle)
	require.NoError(t, err)
	require.Equal(t, 1, g.Len())

	ns := g.Namespaces()
	assert.Equal(t, "http://example.org/", ns["ex"])
	_, bound := ns["bogus"]
	assert.False(t, bound)
	_, hasBase := ns.Base()
	assert.False(t, hasBase)
	assert.Contains(t, g.Triples()[0].Object.Value, "prefix bogus:")
}

func TestDecodeRejectsBadInput(t *testing.T) {
	_, err := DecodeString("<http://example.org/a> <http://example.org/p> .\n", FormatNTriples)
	assert.Error(t, err)

	_, err = DecodeString("", Format("csv"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFilesMergesInOrder(t *testing.T) {
	g, err := LoadFiles(context.Background(), []string{
		filepath.Join("testdata", "people.ttl"),
		filepath.Join("testdata", "extra.nt"),
	}, "")
	require.NoError(t, err)

	// The duplicate foaf:name triple in extra.nt is merged away.
	assert.Equal(t, 6, g.Len())
	last := g.Triples()[g.Len()-1]
	assert.Equal(t, "http://xmlns.com/foaf/0.1/age", last.Predicate.Value)
	assert.Equal(t, "http://example.org/", g.Namespaces()["ex"])
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"a.ttl", "nested/b.ttl", "nested/c.nt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	paths, err := ExpandPaths([]string{filepath.Join(dir, "**", "*.ttl")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.ttl"),
		filepath.Join(dir, "nested", "b.ttl"),
	}, paths)

	_, err = ExpandPaths([]string{filepath.Join(dir, "*.rdf")})
	assert.Error(t, err)

	plain, err := ExpandPaths([]string{"missing.ttl", "missing.ttl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"missing.ttl"}, plain)
}

func TestLoadFilesMissingFile(t *testing.T) {
	_, err := LoadFiles(context.Background(), []string{filepath.Join(t.TempDir(), "nope.ttl")}, "")
	assert.Error(t, err)
}
