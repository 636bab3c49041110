// Package registry assembles the standard dialect manager.
package registry

import (
	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/dialect/mssql"
	"github.com/johndauphine/sqldialect/internal/dialect/mysql"
	"github.com/johndauphine/sqldialect/internal/dialect/postgres"
	"github.com/johndauphine/sqldialect/internal/dialect/sas"
	"github.com/johndauphine/sqldialect/internal/dialect/sqlite"
)

// Factories returns every built-in factory in resolution order.
func Factories() []dialect.Factory {
	var all []dialect.Factory
	all = append(all, postgres.Factories()...)
	all = append(all, mssql.Factories()...)
	all = append(all, mysql.Factories()...)
	all = append(all, sqlite.Factories()...)
	all = append(all, sas.Factories()...)
	return all
}

// New returns a manager with every built-in dialect registered.
func New() *dialect.Manager {
	return dialect.NewManager(Factories()...)
}
