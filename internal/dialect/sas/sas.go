// Package sas provides the SAS dialects. SAS is reached through its JDBC
// bridge, so catalog results carry JDBC type codes and padded names.
package sas

import (
	"strings"

	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/metadata"
)

// ProductName is the product name the SAS driver reports.
const ProductName = "SAS"

// Name92 is the SAS 9.2 dialect name.
const Name92 = "sas-9.2"

var reservedWords = []string{
	"as", "calculated", "case", "else", "end", "except", "from", "full", "group",
	"having", "inner", "intersect", "join", "left", "low", "lower", "not", "null",
	"on", "or", "order", "outer", "right", "select", "union", "upper", "user",
	"when", "where",
}

// QuoteIdentifier renders name as a SAS name literal: 'name'n.
func QuoteIdentifier(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'n"
}

// base is the shared SAS dialect. SAS can neither page nor aggregate
// strings, and it has no catalog queries of its own.
func base() *dialect.Dialect {
	return dialect.New("sas", ProductName,
		dialect.WithReservedWords(reservedWords...),
		dialect.WithQuoting(QuoteIdentifier),
		dialect.WithColumnMetaData(columnKeys(), metadata.ColumnHooks{
			SQLTypeName:   typeName,
			AutoIncrement: func(*metadata.ColumnReader) (bool, error) { return false, nil },
		}),
		dialect.WithPkMetaData(metadata.DefaultPkKeys(), metadata.PkHooks{Name: trimmedName}),
	)
}

// New92 builds the SAS 9.2 dialect.
func New92() *dialect.Dialect {
	return base().Derive(Name92)
}

// Factories returns the SAS factories. The SAS server version says nothing
// useful, so resolution goes by driver version.
func Factories() []dialect.Factory {
	return []dialect.Factory{
		&dialect.DriverPrefixFactory{
			Products: []string{ProductName},
			Prefix:   "9.2",
			Build:    New92,
		},
	}
}

// The SAS driver reports no type name, default or auto-increment columns.
func columnKeys() metadata.ColumnKeys {
	keys := metadata.DefaultColumnKeys()
	keys.SQLTypeName = ""
	keys.Default = ""
	keys.AutoIncrement = ""
	return keys
}

func typeName(r *metadata.ColumnReader) (string, error) {
	code, err := r.SQLType()
	if err != nil {
		return "", err
	}
	return metadata.SQLTypeName(code), nil
}

func trimmedName(r *metadata.PkReader) (string, error) {
	name, err := r.RawName()
	return strings.TrimSpace(name), err
}
