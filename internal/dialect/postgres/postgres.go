// Package postgres provides the PostgreSQL dialects.
package postgres

import (
	"strings"

	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/metadata"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
	"github.com/johndauphine/sqldialect/internal/version"
)

// ProductName is the product name PostgreSQL servers report.
const ProductName = "PostgreSQL"

// Dialect names.
const (
	Name93 = "postgresql-9.3"
	Name94 = "postgresql-9.4"
)

// reservedWords93 are the words PostgreSQL 9.3 reserves outright or allows
// only as function or type names.
var reservedWords93 = []string{
	"all", "analyse", "analyze", "and", "any", "array", "as", "asc", "asymmetric",
	"authorization", "binary", "both", "case", "cast", "check", "collate",
	"collation", "column", "concurrently", "constraint", "create", "cross",
	"current_catalog", "current_date", "current_role", "current_schema",
	"current_time", "current_timestamp", "current_user", "default", "deferrable",
	"desc", "distinct", "do", "else", "end", "except", "false", "fetch", "for",
	"foreign", "freeze", "from", "full", "grant", "group", "having", "ilike", "in",
	"initially", "inner", "intersect", "into", "is", "isnull", "join", "lateral",
	"leading", "left", "like", "limit", "localtime", "localtimestamp", "natural",
	"not", "notnull", "null", "offset", "on", "only", "or", "order", "outer", "over",
	"overlaps", "placing", "primary", "references", "returning", "right", "select",
	"session_user", "similar", "some", "symmetric", "table", "then", "to",
	"trailing", "true", "union", "unique", "user", "using", "variadic", "verbose",
	"when", "where", "window", "with",
}

var serialTypes = map[string]bool{"serial": true, "bigserial": true, "smallserial": true}

// New93 builds the PostgreSQL 9.3 dialect.
func New93() *dialect.Dialect {
	return dialect.New(Name93, ProductName,
		dialect.WithReservedWords(reservedWords93...),
		dialect.WithOffset(true),
		dialect.WithLimitRows(dialect.LimitOffset),
		dialect.WithSelectConcat(arrayToString),
		dialect.WithDefaultSchema("public"),
		dialect.WithColumnMetaData(metadata.DefaultColumnKeys(), metadata.ColumnHooks{AutoIncrement: autoIncrement}),
		dialect.WithCatalog(catalog),
	)
}

// New94 builds the PostgreSQL 9.4 dialect. 9.4 no longer reserves "over" and
// adds ordered-set aggregates.
func New94() *dialect.Dialect {
	return New93().Derive(Name94,
		dialect.WithoutReservedWords("over"),
		dialect.WithMedianFunction("percentile_cont"),
	)
}

// Factories returns the PostgreSQL factories in resolution order.
func Factories() []dialect.Factory {
	products := []string{ProductName}
	return []dialect.Factory{
		&dialect.RangeFactory{
			Products: products,
			Min:      version.Number{Major: 9, Minor: 3},
			Below:    version.Number{Major: 9, Minor: 4},
			Build:    New93,
		},
		&dialect.RangeFactory{
			Products:    products,
			Min:         version.Number{Major: 9, Minor: 4},
			TestedBelow: version.Number{Major: 10, Minor: 0},
			Build:       New94,
		},
	}
}

func arrayToString(_ *dialect.Dialect, sel *sqlfrag.Fragment) (*sqlfrag.Fragment, error) {
	sql := sqlfrag.New("array_to_string(array(")
	sql.AppendFragment(sel)
	sql.Append("), ',')")
	return sql, nil
}

// autoIncrement treats serial columns and sequence defaults as generated,
// since information_schema doesn't report them as identity columns.
func autoIncrement(r *metadata.ColumnReader) (bool, error) {
	if auto, err := r.Bool(r.Keys().AutoIncrement); err != nil || auto {
		return auto, err
	}
	typeName, err := r.RawTypeName()
	if err != nil {
		return false, err
	}
	if serialTypes[strings.ToLower(typeName)] {
		return true, nil
	}
	def, err := r.Default()
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(def), "nextval("), nil
}
