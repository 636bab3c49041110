package probe

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/johndauphine/sqldialect/internal/config"
	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/dialect/mssql"
	"github.com/johndauphine/sqldialect/internal/dialect/mysql"
	"github.com/johndauphine/sqldialect/internal/dialect/postgres"
	"github.com/johndauphine/sqldialect/internal/dialect/sqlite"
	"github.com/johndauphine/sqldialect/internal/version"
)

// Identity is what a server says about itself.
type Identity struct {
	ProductName    string         `json:"product_name" yaml:"product_name"`
	ProductVersion string         `json:"product_version" yaml:"product_version"`
	Version        version.Number `json:"-" yaml:"-"`
	DriverName     string         `json:"driver_name" yaml:"driver_name"`
	DriverVersion  string         `json:"driver_version,omitempty" yaml:"driver_version,omitempty"`
}

type product struct {
	name         string
	versionQuery string
}

// The product name is fixed per connection type; only the version is asked
// of the server.
var products = map[string]product{
	config.TypePostgres: {postgres.ProductName, "SHOW server_version"},
	config.TypeMSSQL:    {mssql.ProductName, "SELECT CAST(SERVERPROPERTY('ProductVersion') AS nvarchar(128))"},
	config.TypeMySQL:    {mysql.ProductName, "SELECT VERSION()"},
	config.TypeSQLite:   {sqlite.ProductName, "SELECT sqlite_version()"},
}

var driverModules = map[string]string{
	"pgx":       "github.com/jackc/pgx/v5",
	"postgres":  "github.com/lib/pq",
	"sqlserver": "github.com/microsoft/go-mssqldb",
	"mysql":     "github.com/go-sql-driver/mysql",
	"sqlite":    "modernc.org/sqlite",
}

// DriverVersion reports the version of the Go module providing the named
// database/sql driver, or "" when the build carries no module information.
func DriverVersion(driverName string) string {
	module, ok := driverModules[driverName]
	if !ok {
		return ""
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path != module {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			dep = dep.Replace
		}
		return strings.TrimPrefix(dep.Version, "v")
	}
	return ""
}

// Identify asks the server for its version.
func (c *Conn) Identify(ctx context.Context) (Identity, error) {
	p, ok := products[c.cfg.Connection.Type]
	if !ok {
		return Identity{}, fmt.Errorf("no version query for connection type %q", c.cfg.Connection.Type)
	}

	var raw string
	if err := c.db.QueryRowxContext(ctx, p.versionQuery).Scan(&raw); err != nil {
		return Identity{}, fmt.Errorf("querying server version: %w", err)
	}
	v, err := version.ParseProduct(raw)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		ProductName:    p.name,
		ProductVersion: strings.TrimSpace(raw),
		Version:        v,
		DriverName:     c.db.DriverName(),
		DriverVersion:  c.cfg.Dialect.DriverVersion,
	}
	if c.cfg.Dialect.ProductName != "" {
		id.ProductName = c.cfg.Dialect.ProductName
	}
	if id.DriverVersion == "" {
		id.DriverVersion = DriverVersion(id.DriverName)
	}
	return id, nil
}

// Resolve identifies the server and picks its dialect from m.
func (c *Conn) Resolve(ctx context.Context, m *dialect.Manager) (*dialect.Dialect, Identity, error) {
	id, err := c.Identify(ctx)
	if err != nil {
		return nil, id, err
	}
	d, err := m.Resolve(id.ProductName, id.Version, id.DriverVersion, c.cfg.Dialect.WarnUntested())
	if err != nil {
		return nil, id, err
	}
	return d, id, nil
}
