// Package mssql provides the Microsoft SQL Server dialects.
package mssql

import (
	"strconv"
	"strings"

	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/metadata"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
	"github.com/johndauphine/sqldialect/internal/version"
)

// ProductName is the product name SQL Server reports.
const ProductName = "Microsoft SQL Server"

// Dialect names.
const (
	Name2000 = "sqlserver-2000"
	Name2005 = "sqlserver-2005"
)

const identitySuffix = " identity"

var reservedWords2000 = []string{
	"add", "all", "alter", "and", "any", "as", "asc", "authorization", "backup",
	"begin", "between", "break", "browse", "bulk", "by", "cascade", "case", "check",
	"checkpoint", "close", "clustered", "coalesce", "collate", "column", "commit",
	"compute", "constraint", "contains", "containstable", "continue", "convert",
	"create", "cross", "current", "current_date", "current_time",
	"current_timestamp", "current_user", "cursor", "database", "dbcc", "deallocate",
	"declare", "default", "delete", "deny", "desc", "disk", "distinct",
	"distributed", "double", "drop", "dummy", "dump", "else", "end", "errlvl",
	"escape", "except", "exec", "execute", "exists", "exit", "fetch", "file",
	"fillfactor", "for", "foreign", "freetext", "freetexttable", "from", "full",
	"function", "goto", "grant", "group", "having", "holdlock", "identity",
	"identity_insert", "identitycol", "if", "in", "index", "inner", "insert",
	"intersect", "into", "is", "join", "key", "kill", "left", "like", "lineno",
	"load", "national", "nocheck", "nonclustered", "not", "null", "nullif", "of",
	"off", "offsets", "on", "open", "opendatasource", "openquery", "openrowset",
	"openxml", "option", "or", "order", "outer", "over", "percent", "plan",
	"precision", "primary", "print", "proc", "procedure", "public", "raiserror",
	"read", "readtext", "reconfigure", "references", "replication", "restore",
	"restrict", "return", "revoke", "right", "rollback", "rowcount", "rowguidcol",
	"rule", "save", "schema", "select", "session_user", "set", "setuser",
	"shutdown", "some", "statistics", "system_user", "table", "textsize", "then",
	"to", "top", "tran", "transaction", "trigger", "truncate", "tsequal", "union",
	"unique", "update", "updatetext", "use", "user", "values", "varying", "view",
	"waitfor", "when", "where", "while", "with", "writetext",
}

// reservedWords2005 are the words 2005 reserves on top of 2000.
var reservedWords2005 = []string{
	"external", "pivot", "revert", "securityaudit", "tablesample", "unpivot",
}

// QuoteIdentifier brackets name, doubling any closing bracket.
func QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// New2000 builds the SQL Server 2000 dialect. It pages with TOP and so cannot
// skip rows.
func New2000() *dialect.Dialect {
	return dialect.New(Name2000, ProductName,
		dialect.WithReservedWords(reservedWords2000...),
		dialect.WithOffset(false),
		dialect.WithLimitRows(limitTop),
		dialect.WithQuoting(QuoteIdentifier),
		dialect.WithDefaultSchema("dbo"),
		dialect.WithColumnMetaData(metadata.DefaultColumnKeys(), metadata.ColumnHooks{
			SQLTypeName:   typeName,
			AutoIncrement: autoIncrement,
		}),
		dialect.WithCatalog(catalog),
	)
}

// New2005 builds the SQL Server 2005 dialect.
func New2005() *dialect.Dialect {
	return New2000().Derive(Name2005,
		dialect.WithReservedWords(reservedWords2005...),
		dialect.WithOffset(true),
		dialect.WithLimitRows(limitRowNumber),
		dialect.WithSelectConcat(xmlPathConcat),
	)
}

// Factories returns the SQL Server factories in resolution order.
func Factories() []dialect.Factory {
	products := []string{ProductName}
	return []dialect.Factory{
		&dialect.RangeFactory{
			Products: products,
			Min:      version.Number{Major: 8, Minor: 0},
			Below:    version.Number{Major: 9, Minor: 0},
			Build:    New2000,
		},
		&dialect.RangeFactory{
			Products:    products,
			Min:         version.Number{Major: 9, Minor: 0},
			TestedBelow: version.Number{Major: 11, Minor: 0},
			Build:       New2005,
		},
	}
}

// limitTop splices "TOP n" after SELECT, or after SELECT DISTINCT.
func limitTop(d *dialect.Dialect, req dialect.LimitRequest) (*sqlfrag.Fragment, error) {
	sel := req.Select.Clone()
	text := sel.SQL()
	lead := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	if dialect.IndexKeyword(text[lead:], "SELECT") != 0 {
		return nil, &dialect.MalformedSelectError{Dialect: d.Name(), Anchor: "SELECT", SQL: text}
	}

	pos := lead + 6
	rest := text[pos:]
	if afterSpace := strings.TrimLeft(rest, " \t\r\n"); dialect.IndexKeyword(afterSpace, "DISTINCT") == 0 {
		pos += len(rest) - len(afterSpace) + 8
	}
	if err := sel.Insert(pos, " TOP "+strconv.Itoa(req.RowCount)); err != nil {
		return nil, err
	}
	return dialect.AssembleSelectWith(sel, req), nil
}

// limitRowNumber wraps the query in a ROW_NUMBER() window and filters on it.
func limitRowNumber(d *dialect.Dialect, req dialect.LimitRequest) (*sqlfrag.Fragment, error) {
	if strings.TrimSpace(req.Order) == "" {
		return nil, &dialect.InvalidPagingRequestError{Dialect: d.Name(), Reason: "ROW_NUMBER paging requires an ORDER BY clause"}
	}

	sql := sqlfrag.New("SELECT * FROM (\n")
	sql.AppendFragment(req.Select)
	sql.Append(",\nROW_NUMBER() OVER (\n")
	sql.Append(req.Order)
	sql.Append(") AS _RowNum\n")
	sql.AppendFragment(req.From)
	if req.Filter != nil && !req.Filter.IsEmpty() {
		sql.Append("\n")
		sql.AppendFragment(req.Filter)
	}
	if strings.TrimSpace(req.GroupBy) != "" {
		sql.Append("\n" + req.GroupBy)
	}
	sql.Append("\n) AS z\n")
	sql.Append("WHERE _RowNum BETWEEN " + strconv.FormatInt(req.Offset+1, 10) +
		" AND " + strconv.FormatInt(req.Offset+int64(req.RowCount), 10))
	return sql, nil
}

// xmlPathConcat aggregates with FOR XML PATH: each value is emitted as a
// space-separated data() node, then spaces become commas.
func xmlPathConcat(d *dialect.Dialect, sel *sqlfrag.Fragment) (*sqlfrag.Fragment, error) {
	text := sel.SQL()
	from := dialect.IndexKeyword(text, "FROM")
	if from < 0 {
		return nil, &dialect.MalformedSelectError{Dialect: d.Name(), Anchor: "FROM", SQL: text}
	}

	sql := sel.Clone()
	if err := sql.Insert(from, "AS [data()] "); err != nil {
		return nil, err
	}
	if err := sql.Insert(0, "REPLACE (("); err != nil {
		return nil, err
	}
	sql.Append(" FOR XML PATH ('')), ' ', ',')")
	return sql, nil
}

// typeName strips the " identity" marker the catalog query appends.
func typeName(r *metadata.ColumnReader) (string, error) {
	raw, err := r.RawTypeName()
	if err != nil {
		return "", err
	}
	if hasIdentitySuffix(raw) {
		return raw[:len(raw)-len(identitySuffix)], nil
	}
	if raw == "" {
		code, err := r.SQLType()
		if err != nil {
			return "", err
		}
		return metadata.SQLTypeName(code), nil
	}
	return raw, nil
}

func autoIncrement(r *metadata.ColumnReader) (bool, error) {
	raw, err := r.RawTypeName()
	if err != nil {
		return false, err
	}
	if hasIdentitySuffix(raw) {
		return true, nil
	}
	return r.Bool(r.Keys().AutoIncrement)
}

func hasIdentitySuffix(typeName string) bool {
	return len(typeName) > len(identitySuffix) &&
		strings.EqualFold(typeName[len(typeName)-len(identitySuffix):], identitySuffix)
}
