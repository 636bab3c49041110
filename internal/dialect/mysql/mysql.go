// Package mysql provides the MySQL dialects.
package mysql

import (
	"strings"

	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/version"
)

// ProductName is the product name MySQL reports.
const ProductName = "MySQL"

// Dialect names.
const (
	Name57 = "mysql-5.7"
	Name80 = "mysql-8.0"
)

var reservedWords57 = []string{
	"accessible", "add", "all", "alter", "analyze", "and", "as", "asc", "asensitive",
	"before", "between", "bigint", "binary", "blob", "both", "by", "call", "cascade",
	"case", "change", "char", "character", "check", "collate", "column", "condition",
	"constraint", "continue", "convert", "create", "cross", "current_date",
	"current_time", "current_timestamp", "current_user", "cursor", "database",
	"databases", "day_hour", "day_microsecond", "day_minute", "day_second", "dec",
	"decimal", "declare", "default", "delayed", "delete", "desc", "describe",
	"deterministic", "distinct", "distinctrow", "div", "double", "drop", "dual",
	"each", "else", "elseif", "enclosed", "escaped", "exists", "exit", "explain",
	"false", "fetch", "float", "float4", "float8", "for", "force", "foreign", "from",
	"fulltext", "generated", "get", "grant", "group", "having", "high_priority",
	"hour_microsecond", "hour_minute", "hour_second", "if", "ignore", "in", "index",
	"infile", "inner", "inout", "insensitive", "insert", "int", "int1", "int2",
	"int3", "int4", "int8", "integer", "interval", "into", "io_after_gtids",
	"io_before_gtids", "is", "iterate", "join", "key", "keys", "kill", "leading",
	"leave", "left", "like", "limit", "linear", "lines", "load", "localtime",
	"localtimestamp", "lock", "long", "longblob", "longtext", "loop",
	"low_priority", "master_bind", "master_ssl_verify_server_cert", "match",
	"maxvalue", "mediumblob", "mediumint", "mediumtext", "middleint",
	"minute_microsecond", "minute_second", "mod", "modifies", "natural", "not",
	"no_write_to_binlog", "null", "numeric", "on", "optimize", "optimizer_costs",
	"option", "optionally", "or", "order", "out", "outer", "outfile", "partition",
	"precision", "primary", "procedure", "purge", "range", "read", "reads",
	"read_write", "real", "references", "regexp", "release", "rename", "repeat",
	"replace", "require", "resignal", "restrict", "return", "revoke", "right",
	"rlike", "schema", "schemas", "second_microsecond", "select", "sensitive",
	"separator", "set", "show", "signal", "smallint", "spatial", "specific", "sql",
	"sqlexception", "sqlstate", "sqlwarning", "sql_big_result",
	"sql_calc_found_rows", "sql_small_result", "ssl", "starting", "stored",
	"straight_join", "table", "terminated", "then", "tinyblob", "tinyint",
	"tinytext", "to", "trailing", "trigger", "true", "undo", "union", "unique",
	"unlock", "unsigned", "update", "usage", "use", "using", "utc_date", "utc_time",
	"utc_timestamp", "values", "varbinary", "varchar", "varcharacter", "varying",
	"virtual", "when", "where", "while", "with", "write", "xor", "year_month",
	"zerofill",
}

// reservedWords80 are the words 8.0 reserves on top of 5.7, mostly window
// functions and common table expressions.
var reservedWords80 = []string{
	"cume_dist", "dense_rank", "empty", "except", "first_value", "grouping",
	"groups", "json_table", "lag", "last_value", "lateral", "lead", "nth_value",
	"ntile", "of", "over", "percent_rank", "rank", "recursive", "row", "rows",
	"row_number", "system", "window",
}

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// New57 builds the MySQL 5.7 dialect.
func New57() *dialect.Dialect {
	return dialect.New(Name57, ProductName,
		dialect.WithReservedWords(reservedWords57...),
		dialect.WithOffset(true),
		dialect.WithLimitRows(dialect.LimitOffset),
		dialect.WithQuoting(QuoteIdentifier),
		dialect.WithCatalog(catalog),
	)
}

// New80 builds the MySQL 8.0 dialect.
func New80() *dialect.Dialect {
	return New57().Derive(Name80, dialect.WithReservedWords(reservedWords80...))
}

// Factories returns the MySQL factories in resolution order.
func Factories() []dialect.Factory {
	products := []string{ProductName}
	return []dialect.Factory{
		&dialect.RangeFactory{
			Products: products,
			Min:      version.Number{Major: 5, Minor: 7},
			Below:    version.Number{Major: 8, Minor: 0},
			Build:    New57,
		},
		&dialect.RangeFactory{
			Products:    products,
			Min:         version.Number{Major: 8, Minor: 0},
			TestedBelow: version.Number{Major: 9, Minor: 0},
			Build:       New80,
		},
	}
}
