package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/logging"
	"github.com/johndauphine/sqldialect/internal/metadata"
)

// Report is the result of inspecting a schema.
type Report struct {
	ID          string           `json:"id" yaml:"id"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Identity    Identity         `json:"server" yaml:"server"`
	Dialect     string           `json:"dialect" yaml:"dialect"`
	Schema      string           `json:"schema" yaml:"schema"`
	Tables      []metadata.Table `json:"tables" yaml:"tables"`
}

// ProgressFunc is told how many of total tables are done.
type ProgressFunc func(done, total int)

func catalogOf(d *dialect.Dialect) (dialect.Catalog, error) {
	cat, ok := d.Catalog()
	if !ok {
		return cat, fmt.Errorf("%s: catalog queries: %w", d.Name(), dialect.ErrNotSupported)
	}
	return cat, nil
}

// Tables lists the base tables in schema.
func (c *Conn) Tables(ctx context.Context, d *dialect.Dialect, schema string) ([]string, error) {
	cat, err := catalogOf(d)
	if err != nil {
		return nil, err
	}
	rows, err := c.query(ctx, cat.Tables(schema))
	if err != nil {
		return nil, fmt.Errorf("listing tables in %s: %w", schema, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing tables in %s: %w", schema, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// InspectTable reads one table's columns and primary key.
func (c *Conn) InspectTable(ctx context.Context, d *dialect.Dialect, schema, table string) (metadata.Table, error) {
	t := metadata.Table{Schema: schema, Name: table}
	cat, err := catalogOf(d)
	if err != nil {
		return t, err
	}

	rows, err := c.query(ctx, cat.Columns(schema, table))
	if err != nil {
		return t, fmt.Errorf("reading columns of %s: %w", t.FullName(), err)
	}
	t.Columns, err = d.ColumnMetaDataReader(rows).ReadAll()
	rows.Close()
	if err != nil {
		return t, fmt.Errorf("reading columns of %s: %w", t.FullName(), err)
	}
	if len(t.Columns) == 0 {
		return t, fmt.Errorf("reading columns of %s: no such table", t.FullName())
	}

	rows, err = c.query(ctx, cat.PrimaryKey(schema, table))
	if err != nil {
		return t, fmt.Errorf("reading primary key of %s: %w", t.FullName(), err)
	}
	t.PrimaryKey, err = d.PkMetaDataReader(rows).ReadAll()
	rows.Close()
	if err != nil {
		return t, fmt.Errorf("reading primary key of %s: %w", t.FullName(), err)
	}
	return t, nil
}

// Inspect resolves the dialect and reads the named tables, or every table
// in schema when none are named. An empty schema means the dialect default.
func (c *Conn) Inspect(ctx context.Context, m *dialect.Manager, schema string, tables []string, progress ProgressFunc) (*Report, error) {
	d, id, err := c.Resolve(ctx, m)
	if err != nil {
		return nil, err
	}
	if schema == "" {
		schema = c.cfg.Connection.Schema
	}
	if schema == "" {
		schema = d.DefaultSchema()
	}
	if len(tables) == 0 {
		if tables, err = c.Tables(ctx, d, schema); err != nil {
			return nil, err
		}
	}

	report := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Identity:    id,
		Dialect:     d.Name(),
		Schema:      schema,
	}
	start := time.Now()
	for i, name := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := c.InspectTable(ctx, d, schema, name)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, t)
		if progress != nil {
			progress(i+1, len(tables))
		}
	}
	logging.Debug("Inspected %d tables in %s using %s (%s)", len(report.Tables), schema, d.Name(), time.Since(start).Round(time.Millisecond))
	return report, nil
}
