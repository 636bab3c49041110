// Package probe connects to a live database, works out which dialect it
// speaks and reads table metadata through that dialect.
package probe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/johndauphine/sqldialect/internal/config"
	"github.com/johndauphine/sqldialect/internal/logging"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"

	// database/sql drivers, registered by init()
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Conn is an open connection pool plus the settings it was opened with.
type Conn struct {
	db  *sqlx.DB
	cfg *config.Config
}

// Open connects using cfg and verifies the connection with a ping.
func Open(ctx context.Context, cfg *config.Config) (*Conn, error) {
	db, err := sqlx.Open(cfg.DriverName(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}

	// Configure connection pool
	maxConns := cfg.Connection.MaxConnections
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns/4 + 1)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logging.Debug("Connected to %s (driver %s)", describe(cfg), cfg.DriverName())
	return &Conn{db: db, cfg: cfg}, nil
}

// NewConn wraps an already open database, e.g. one shared with other code.
func NewConn(db *sql.DB, cfg *config.Config) *Conn {
	return &Conn{db: sqlx.NewDb(db, cfg.DriverName()), cfg: cfg}
}

// Close closes all connections in the pool
func (c *Conn) Close() error {
	return c.db.Close()
}

// DB returns the underlying database connection
func (c *Conn) DB() *sqlx.DB {
	return c.db
}

// Config returns the settings the connection was opened with.
func (c *Conn) Config() *config.Config {
	return c.cfg
}

// query runs a catalog fragment, converting its "?" markers to the
// driver's bind style.
func (c *Conn) query(ctx context.Context, frag *sqlfrag.Fragment) (*sqlx.Rows, error) {
	if err := frag.Validate(); err != nil {
		return nil, err
	}
	if logging.IsDebug() {
		logging.Debug("Catalog query:\n%s", frag)
	}
	return c.db.QueryxContext(ctx, c.db.Rebind(frag.SQL()), frag.Params()...)
}

func describe(cfg *config.Config) string {
	conn := cfg.Connection
	if conn.Type == config.TypeSQLite {
		return "sqlite " + conn.Path
	}
	return fmt.Sprintf("%s %s:%d/%s", conn.Type, conn.Host, conn.Port, conn.Database)
}
