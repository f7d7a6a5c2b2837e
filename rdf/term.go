// Package rdf provides the in-memory RDF model used by the converter: typed terms,
// an indexed triple collection with a namespace table, and loaders for the common
// serializations.
package rdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Term.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindIRI
	KindBlank
	KindString
	KindInteger
	KindDecimal
	KindDouble
	KindBoolean
	KindDateTime
	KindDate
	// KindOther covers literals whose datatype has no native mapping.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindDateTime:
		return "datetime"
	case KindDate:
		return "date"
	case KindOther:
		return "other"
	}
	return "invalid"
}

// IsLiteral reports whether the kind is one of the literal variants.
func (k Kind) IsLiteral() bool {
	return k >= KindString
}

// Well-known namespaces and IRIs.
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"

	RDFType      = RDFNamespace + "type"
	RDFStatement = RDFNamespace + "Statement"
	RDFSubject   = RDFNamespace + "subject"
	RDFPredicate = RDFNamespace + "predicate"
	RDFObject    = RDFNamespace + "object"
	RDFLangStr   = RDFNamespace + "langString"

	XSDString   = XSDNamespace + "string"
	XSDBoolean  = XSDNamespace + "boolean"
	XSDDecimal  = XSDNamespace + "decimal"
	XSDDouble   = XSDNamespace + "double"
	XSDFloat    = XSDNamespace + "float"
	XSDDateTime = XSDNamespace + "dateTime"
	XSDDate     = XSDNamespace + "date"
	XSDInteger  = XSDNamespace + "integer"
)

var integerTypes = map[string]bool{}

func init() {
	for _, local := range []string{
		"integer", "int", "long", "short", "byte",
		"nonNegativeInteger", "positiveInteger", "negativeInteger", "nonPositiveInteger",
		"unsignedInt", "unsignedLong", "unsignedShort", "unsignedByte",
	} {
		integerTypes[XSDNamespace+local] = true
	}
}

// Term is an RDF term. Identifiers (IRIs and blank nodes) and literals share one
// comparable struct so terms can be used directly as map keys.
type Term struct {
	Kind Kind
	// Value is the IRI, the blank node label (without "_:") or the literal's lexical form.
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Blank returns a blank node term. A leading "_:" is stripped.
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(label, "_:")}
}

// String returns a plain xsd:string literal.
func String(s string) Term {
	return Term{Kind: KindString, Value: s, Datatype: XSDString}
}

// LangString returns a language-tagged string literal.
func LangString(s, lang string) Term {
	return Term{Kind: KindString, Value: s, Datatype: RDFLangStr, Lang: lang}
}

// Integer returns an xsd:integer literal.
func Integer(v int64) Term {
	return Term{Kind: KindInteger, Value: strconv.FormatInt(v, 10), Datatype: XSDInteger}
}

// Double returns an xsd:double literal.
func Double(v float64) Term {
	return Term{Kind: KindDouble, Value: strconv.FormatFloat(v, 'g', -1, 64), Datatype: XSDDouble}
}

// Boolean returns an xsd:boolean literal.
func Boolean(v bool) Term {
	return Term{Kind: KindBoolean, Value: strconv.FormatBool(v), Datatype: XSDBoolean}
}

// DateTime returns an xsd:dateTime literal.
func DateTime(v time.Time) Term {
	return Term{Kind: KindDateTime, Value: v.Format(time.RFC3339), Datatype: XSDDateTime}
}

// Literal returns a literal with an explicit datatype. The kind is derived from the
// datatype; unknown datatypes map to KindOther.
func Literal(lexical, datatype string) Term {
	if datatype == "" {
		datatype = XSDString
	}
	return Term{Kind: kindForDatatype(datatype), Value: lexical, Datatype: datatype}
}

func kindForDatatype(dt string) Kind {
	switch {
	case dt == XSDString || dt == RDFLangStr:
		return KindString
	case integerTypes[dt]:
		return KindInteger
	case dt == XSDDecimal:
		return KindDecimal
	case dt == XSDDouble || dt == XSDFloat:
		return KindDouble
	case dt == XSDBoolean:
		return KindBoolean
	case dt == XSDDateTime:
		return KindDateTime
	case dt == XSDDate:
		return KindDate
	}
	return KindOther
}

// IsZero reports whether the term is unset.
func (t Term) IsZero() bool {
	return t.Kind == KindInvalid
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool {
	return t.Kind == KindIRI
}

// IsLiteral reports whether the term is a literal.
func (t Term) IsLiteral() bool {
	return t.Kind.IsLiteral()
}

// IsResource reports whether the term is an IRI or a blank node.
func (t Term) IsResource() bool {
	return t.Kind == KindIRI || t.Kind == KindBlank
}

// Key returns the string used to key graph nodes: the IRI itself, "_:label" for
// blank nodes, and the N-Triples form for literals.
func (t Term) Key() string {
	switch t.Kind {
	case KindIRI:
		return t.Value
	case KindBlank:
		return "_:" + t.Value
	case KindInvalid:
		return ""
	}
	return t.NTriples()
}

// NTriples serializes the term in N-Triples syntax.
func (t Term) NTriples() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindInvalid:
		return ""
	}
	lex := `"` + escapeLiteral(t.Value) + `"`
	if t.Lang != "" {
		return lex + "@" + t.Lang
	}
	if t.Datatype == "" || t.Datatype == XSDString {
		return lex
	}
	return lex + "^^<" + t.Datatype + ">"
}

// String returns the lexical value, which matches how identifiers and literals are
// rendered when cast to text.
func (t Term) String() string {
	if t.Kind == KindBlank {
		return "_:" + t.Value
	}
	return t.Value
}

// Native returns the literal's value as a Go type: int64, float64, bool, time.Time or
// string. Identifiers and literals that fail to parse return their lexical form.
func (t Term) Native() any {
	switch t.Kind {
	case KindInteger:
		if v, err := strconv.ParseInt(strings.TrimPrefix(t.Value, "+"), 10, 64); err == nil {
			return v
		}
	case KindDecimal, KindDouble:
		if v, err := strconv.ParseFloat(t.Value, 64); err == nil {
			return v
		}
	case KindBoolean:
		if v, err := strconv.ParseBool(t.Value); err == nil {
			return v
		}
	case KindDateTime:
		if v, err := time.Parse(time.RFC3339Nano, t.Value); err == nil {
			return v
		}
		if v, err := time.Parse("2006-01-02T15:04:05", t.Value); err == nil {
			return v
		}
	case KindDate:
		if v, err := time.Parse("2006-01-02", t.Value); err == nil {
			return v
		}
	}
	return t.String()
}

// Triple is a single RDF statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NTriples serializes the triple as one N-Triples line without the trailing newline.
func (tr Triple) NTriples() string {
	return fmt.Sprintf("%s %s %s .", tr.Subject.NTriples(), tr.Predicate.NTriples(), tr.Object.NTriples())
}

func escapeLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}
