// Package sqlite provides the SQLite dialect.
package sqlite

import (
	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
	"github.com/johndauphine/sqldialect/internal/version"
)

// ProductName is the name used for SQLite connections.
const ProductName = "SQLite"

// Name3 is the SQLite 3 dialect name.
const Name3 = "sqlite-3"

// SQLite keywords. SQLite accepts many of these as bare names in some
// positions but quoting them is always safe.
var keywords = []string{
	"abort", "action", "add", "after", "all", "alter", "always", "analyze", "and",
	"as", "asc", "attach", "autoincrement", "before", "begin", "between", "by",
	"cascade", "case", "cast", "check", "collate", "column", "commit", "conflict",
	"constraint", "create", "cross", "current", "current_date", "current_time",
	"current_timestamp", "database", "default", "deferrable", "deferred", "delete",
	"desc", "detach", "distinct", "do", "drop", "each", "else", "end", "escape",
	"except", "exclude", "exclusive", "exists", "explain", "fail", "filter",
	"first", "following", "for", "foreign", "from", "full", "generated", "glob",
	"group", "groups", "having", "if", "ignore", "immediate", "in", "index",
	"indexed", "initially", "inner", "insert", "instead", "intersect", "into", "is",
	"isnull", "join", "key", "last", "left", "like", "limit", "match",
	"materialized", "natural", "no", "not", "nothing", "notnull", "null", "nulls",
	"of", "offset", "on", "or", "order", "others", "outer", "over", "partition",
	"plan", "pragma", "preceding", "primary", "query", "raise", "range",
	"recursive", "references", "regexp", "reindex", "release", "rename", "replace",
	"restrict", "returning", "right", "rollback", "row", "rows", "savepoint",
	"select", "set", "table", "temp", "temporary", "then", "ties", "to",
	"transaction", "trigger", "unbounded", "union", "unique", "update", "using",
	"vacuum", "values", "view", "virtual", "when", "where", "window", "with",
	"without",
}

// New3 builds the SQLite 3 dialect.
func New3() *dialect.Dialect {
	return dialect.New(Name3, ProductName,
		dialect.WithReservedWords(keywords...),
		dialect.WithOffset(true),
		dialect.WithLimitRows(dialect.LimitOffset),
		dialect.WithDefaultSchema("main"),
		dialect.WithCatalog(catalog),
	)
}

// Factories returns the SQLite factory. 3.25 is the first release with
// window functions.
func Factories() []dialect.Factory {
	return []dialect.Factory{
		&dialect.RangeFactory{
			Products: []string{ProductName},
			Min:      version.Number{Major: 3, Minor: 25},
			Below:    version.Number{Major: 4, Minor: 0},
			Build:    New3,
		},
	}
}

var catalog = dialect.Catalog{
	Tables: func(schema string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT name AS TABLE_NAME
FROM ` + dialect.DoubleQuote(schema) + `.sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`)
	},

	// rowid aliases (a lone INTEGER PRIMARY KEY) are the only generated keys
	Columns: func(schema, table string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT
    p.name AS COLUMN_NAME,
    p.type AS TYPE_NAME,
    CASE WHEN p."notnull" = 1 THEN 0 ELSE 1 END AS NULLABLE,
    p.cid + 1 AS ORDINAL_POSITION,
    p.dflt_value AS COLUMN_DEF,
    CASE WHEN p.pk = 1 AND upper(p.type) = 'INTEGER'
        AND (SELECT count(*) FROM pragma_table_info(?, ?) k WHERE k.pk > 0) = 1
        THEN 'YES' ELSE 'NO' END AS IS_AUTOINCREMENT
FROM pragma_table_info(?, ?) p
ORDER BY p.cid`, table, schema, table, schema)
	},

	PrimaryKey: func(schema, table string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT name AS COLUMN_NAME, pk AS KEY_SEQ
FROM pragma_table_info(?, ?)
WHERE pk > 0
ORDER BY pk`, table, schema)
	},
}
