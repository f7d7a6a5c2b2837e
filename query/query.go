// Package query holds the fixed pattern queries the converter runs against an RDF
// source. Each query takes variable bindings and returns a table of terms.
package query

import (
	"errors"
	"fmt"

	"github.com/c360studio/semgraph/rdf"
)

// ErrUnboundVariable is returned when a query needs a binding the caller did not supply.
var ErrUnboundVariable = errors.New("unbound query variable")

// Binding and column names.
const (
	VarIRI    = "iri"
	VarBase   = "base"
	VarType   = "type"
	VarPred   = "p"
	VarObject = "o"
	VarSource = "source"
	VarTarget = "target"
)

// Source is the read side of a triple collection. *rdf.Graph implements it.
type Source interface {
	Match(s, p, o rdf.Term) []rdf.Triple
	Subjects() []rdf.Term
}

// Bindings assigns terms to query variables.
type Bindings map[string]rdf.Term

// Require returns the bound term or ErrUnboundVariable.
func (b Bindings) Require(name string) (rdf.Term, error) {
	t, ok := b[name]
	if !ok || t.IsZero() {
		return rdf.Term{}, fmt.Errorf("%w: ?%s", ErrUnboundVariable, name)
	}
	return t, nil
}

// Table is a query result.
type Table struct {
	Columns []string
	Rows    [][]rdf.Term
}

// NewTable returns an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. Values are given in column order.
func (t *Table) Append(values ...rdf.Term) {
	t.Rows = append(t.Rows, values)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of a column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Get returns the value of a column in a row. Unknown columns yield a zero term.
func (t *Table) Get(row int, column string) rdf.Term {
	i := t.Column(column)
	if i < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return rdf.Term{}
	}
	return t.Rows[row][i]
}

// PropertyRow is one (predicate, value) pair of a node or relation instance.
type PropertyRow struct {
	Predicate rdf.Term
	Value     rdf.Term
}

// PropertyRows reads the p and o columns.
func (t *Table) PropertyRows() []PropertyRow {
	rows := make([]PropertyRow, 0, len(t.Rows))
	for i := range t.Rows {
		rows = append(rows, PropertyRow{Predicate: t.Get(i, VarPred), Value: t.Get(i, VarObject)})
	}
	return rows
}

// Query is a named, parameterized pattern query.
type Query interface {
	Name() string
	Run(src Source, b Bindings) (*Table, error)
}

// Func adapts a function to the Query interface.
type Func struct {
	QueryName string
	Fn        func(src Source, b Bindings) (*Table, error)
}

func (f Func) Name() string { return f.QueryName }

func (f Func) Run(src Source, b Bindings) (*Table, error) {
	return f.Fn(src, b)
}

// Catalog is the set of queries the converter runs. Any entry can be replaced to
// adapt conversion to a different modeling convention.
type Catalog struct {
	NodeIRIs           Query
	NodeTypes          Query
	NodeProperties     Query
	RelationTypes      Query
	ReifiedRelations   Query
	RelationProperties Query
}

// DefaultCatalog returns the standard queries: typed subjects become nodes, literal
// objects become properties, resource objects become basic relations, and
// rdf:Statement style reifications become relations with properties.
func DefaultCatalog() Catalog {
	return Catalog{
		NodeIRIs:           Func{"node_iris", nodeIRIs},
		NodeTypes:          Func{"node_types", nodeTypes},
		NodeProperties:     Func{"node_properties", literalProperties},
		RelationTypes:      Func{"relation_types", relationTypes},
		ReifiedRelations:   Func{"reified_relations", reifiedRelations},
		RelationProperties: Func{"relation_properties", literalProperties},
	}
}

// Validate reports a missing query.
func (c Catalog) Validate() error {
	for name, q := range map[string]Query{
		"node_iris":           c.NodeIRIs,
		"node_types":          c.NodeTypes,
		"node_properties":     c.NodeProperties,
		"relation_types":      c.RelationTypes,
		"reified_relations":   c.ReifiedRelations,
		"relation_properties": c.RelationProperties,
	} {
		if q == nil {
			return fmt.Errorf("catalog is missing the %s query", name)
		}
	}
	return nil
}
