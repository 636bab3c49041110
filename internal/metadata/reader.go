// Package metadata normalizes driver catalog results (column and primary key
// listings) into a consistent shape, whatever labels a given driver or
// catalog query uses for its columns.
package metadata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Rows is a forward-only cursor over catalog rows. *sql.Rows and *sqlx.Rows
// satisfy it.
type Rows interface {
	Next() bool
	Columns() ([]string, error)
	Scan(dest ...any) error
	Err() error
	Close() error
}

// cursor holds the current row keyed by upper-cased column label.
type cursor struct {
	rows    Rows
	labels  []string
	current map[string]any
	err     error
}

func (c *cursor) next() bool {
	if c.err != nil {
		return false
	}
	if c.labels == nil {
		cols, err := c.rows.Columns()
		if err != nil {
			c.err = fmt.Errorf("reading metadata columns: %w", err)
			return false
		}
		c.labels = make([]string, len(cols))
		for i, col := range cols {
			c.labels[i] = strings.ToUpper(col)
		}
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		c.current = nil
		return false
	}

	values := make([]any, len(c.labels))
	ptrs := make([]any, len(c.labels))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = fmt.Errorf("scanning metadata row: %w", err)
		return false
	}

	c.current = make(map[string]any, len(c.labels))
	for i, label := range c.labels {
		c.current[label] = values[i]
	}
	return true
}

// Value returns the raw value under label. ok is false when the label is
// empty, absent from the result or NULL.
func (c *cursor) Value(label string) (v any, ok bool) {
	if label == "" || c.current == nil {
		return nil, false
	}
	v, ok = c.current[strings.ToUpper(label)]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value under label as a string, "" when absent.
func (c *cursor) String(label string) (string, error) {
	v, ok := c.Value(label)
	if !ok {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("metadata column %s: %w", label, err)
	}
	return s, nil
}

// Int returns the value under label as an int, 0 when absent.
func (c *cursor) Int(label string) (int, error) {
	v, ok := c.Value(label)
	if !ok {
		return 0, nil
	}
	if b, isBytes := v.([]byte); isBytes {
		v = strings.TrimSpace(string(b))
	}
	if s, isString := v.(string); isString {
		// cast parses with base 0, so "08" would be read as octal
		v = strings.TrimLeft(strings.TrimSpace(s), "0")
		if v == "" {
			return 0, nil
		}
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("metadata column %s: %w", label, err)
	}
	return n, nil
}

// Bool accepts numeric flags (non-zero is true) and YES/NO style strings.
func (c *cursor) Bool(label string) (bool, error) {
	v, ok := c.Value(label)
	if !ok {
		return false, nil
	}
	if b, isBytes := v.([]byte); isBytes {
		v = string(b)
	}
	if s, isString := v.(string); isString {
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "YES", "Y", "TRUE", "T", "1":
			return true, nil
		case "NO", "N", "FALSE", "F", "0", "":
			return false, nil
		}
	}
	n, err := cast.ToInt64E(v)
	if err == nil {
		return n != 0, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("metadata column %s: %w", label, err)
	}
	return b, nil
}

// Err returns the first error hit while iterating.
func (c *cursor) Err() error {
	return c.err
}

// Close releases the underlying rows.
func (c *cursor) Close() error {
	return c.rows.Close()
}

// ColumnKeys names the result columns that carry each logical column field.
// An empty key means the catalog doesn't report that field.
type ColumnKeys struct {
	Name          string
	SQLType       string
	SQLTypeName   string
	Scale         string
	Nullable      string
	Position      string
	Description   string
	Default       string
	AutoIncrement string
}

// DefaultColumnKeys returns the labels used by standard catalog listings.
func DefaultColumnKeys() ColumnKeys {
	return ColumnKeys{
		Name:          "COLUMN_NAME",
		SQLType:       "DATA_TYPE",
		SQLTypeName:   "TYPE_NAME",
		Scale:         "COLUMN_SIZE",
		Nullable:      "NULLABLE",
		Position:      "ORDINAL_POSITION",
		Description:   "REMARKS",
		Default:       "COLUMN_DEF",
		AutoIncrement: "IS_AUTOINCREMENT",
	}
}

// ColumnHooks replace individual accessors for drivers with nonstandard
// behavior. Nil hooks fall back to the key-based lookup.
type ColumnHooks struct {
	SQLTypeName   func(r *ColumnReader) (string, error)
	AutoIncrement func(r *ColumnReader) (bool, error)
}

// Column is one normalized column description.
type Column struct {
	Name          string `json:"name" yaml:"name"`
	SQLType       int    `json:"sql_type" yaml:"sql_type"`
	SQLTypeName   string `json:"sql_type_name" yaml:"sql_type_name"`
	Scale         int    `json:"scale" yaml:"scale"`
	Nullable      bool   `json:"nullable" yaml:"nullable"`
	Position      int    `json:"position" yaml:"position"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Default       string `json:"default,omitempty" yaml:"default,omitempty"`
	AutoIncrement bool   `json:"auto_increment" yaml:"auto_increment"`
}

// ColumnReader walks a column listing one row at a time.
type ColumnReader struct {
	cursor
	keys  ColumnKeys
	hooks ColumnHooks
}

// NewColumnReader wraps rows using keys to locate each field.
func NewColumnReader(rows Rows, keys ColumnKeys, hooks ColumnHooks) *ColumnReader {
	return &ColumnReader{cursor: cursor{rows: rows}, keys: keys, hooks: hooks}
}

// Keys returns the label mapping in use.
func (r *ColumnReader) Keys() ColumnKeys {
	return r.keys
}

// Next advances to the next column row.
func (r *ColumnReader) Next() bool {
	return r.next()
}

// Name returns the column name.
func (r *ColumnReader) Name() (string, error) {
	return r.String(r.keys.Name)
}

// RawTypeName returns the type name exactly as the catalog reported it.
func (r *ColumnReader) RawTypeName() (string, error) {
	return r.String(r.keys.SQLTypeName)
}

// SQLType returns the type code, derived from the type name when the
// catalog has no code column.
func (r *ColumnReader) SQLType() (int, error) {
	if _, ok := r.Value(r.keys.SQLType); ok {
		return r.Int(r.keys.SQLType)
	}
	name, err := r.RawTypeName()
	if err != nil {
		return 0, err
	}
	if name != "" && r.hooks.SQLTypeName != nil {
		if name, err = r.hooks.SQLTypeName(r); err != nil {
			return 0, err
		}
	}
	return SQLTypeFromName(name), nil
}

// SQLTypeName returns the normalized type name.
func (r *ColumnReader) SQLTypeName() (string, error) {
	if r.hooks.SQLTypeName != nil {
		return r.hooks.SQLTypeName(r)
	}
	name, err := r.RawTypeName()
	if err != nil || name != "" {
		return name, err
	}
	code, err := r.SQLType()
	if err != nil {
		return "", err
	}
	return SQLTypeName(code), nil
}

// Scale returns the reported size or scale.
func (r *ColumnReader) Scale() (int, error) {
	return r.Int(r.keys.Scale)
}

// Nullable reports whether the column accepts NULL.
func (r *ColumnReader) Nullable() (bool, error) {
	return r.Bool(r.keys.Nullable)
}

// Position returns the 1-based ordinal position.
func (r *ColumnReader) Position() (int, error) {
	return r.Int(r.keys.Position)
}

// Description returns the column comment.
func (r *ColumnReader) Description() (string, error) {
	return r.String(r.keys.Description)
}

// Default returns the column default expression.
func (r *ColumnReader) Default() (string, error) {
	return r.String(r.keys.Default)
}

// AutoIncrement reports whether the database generates values for the column.
func (r *ColumnReader) AutoIncrement() (bool, error) {
	if r.hooks.AutoIncrement != nil {
		return r.hooks.AutoIncrement(r)
	}
	return r.Bool(r.keys.AutoIncrement)
}

// Column reads every field of the current row.
func (r *ColumnReader) Column() (Column, error) {
	var (
		col Column
		err error
	)
	if col.Name, err = r.Name(); err != nil {
		return col, err
	}
	if col.SQLType, err = r.SQLType(); err != nil {
		return col, err
	}
	if col.SQLTypeName, err = r.SQLTypeName(); err != nil {
		return col, err
	}
	if col.Scale, err = r.Scale(); err != nil {
		return col, err
	}
	if col.Nullable, err = r.Nullable(); err != nil {
		return col, err
	}
	if col.Position, err = r.Position(); err != nil {
		return col, err
	}
	if col.Description, err = r.Description(); err != nil {
		return col, err
	}
	if col.Default, err = r.Default(); err != nil {
		return col, err
	}
	if col.AutoIncrement, err = r.AutoIncrement(); err != nil {
		return col, err
	}
	return col, nil
}

// ReadAll consumes the remaining rows.
func (r *ColumnReader) ReadAll() ([]Column, error) {
	var cols []Column
	for r.Next() {
		col, err := r.Column()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// PkKeys names the result columns of a primary key listing.
type PkKeys struct {
	Name   string
	KeySeq string
}

// DefaultPkKeys returns the labels used by standard primary key listings.
func DefaultPkKeys() PkKeys {
	return PkKeys{Name: "COLUMN_NAME", KeySeq: "KEY_SEQ"}
}

// PkHooks replace individual primary key accessors.
type PkHooks struct {
	Name func(r *PkReader) (string, error)
}

// KeyColumn is one column of a primary key.
type KeyColumn struct {
	Name   string `json:"name" yaml:"name"`
	KeySeq int    `json:"key_seq" yaml:"key_seq"`
}

// PkReader walks a primary key listing one row at a time.
type PkReader struct {
	cursor
	keys  PkKeys
	hooks PkHooks
}

// NewPkReader wraps rows using keys to locate each field.
func NewPkReader(rows Rows, keys PkKeys, hooks PkHooks) *PkReader {
	return &PkReader{cursor: cursor{rows: rows}, keys: keys, hooks: hooks}
}

// Next advances to the next key column.
func (r *PkReader) Next() bool {
	return r.next()
}

// RawName returns the column name as reported.
func (r *PkReader) RawName() (string, error) {
	return r.String(r.keys.Name)
}

// Name returns the key column name.
func (r *PkReader) Name() (string, error) {
	if r.hooks.Name != nil {
		return r.hooks.Name(r)
	}
	return r.RawName()
}

// KeySeq returns the 1-based position of the column within the key.
func (r *PkReader) KeySeq() (int, error) {
	return r.Int(r.keys.KeySeq)
}

// ReadAll consumes the remaining rows, ordered by key sequence.
func (r *PkReader) ReadAll() ([]KeyColumn, error) {
	var key []KeyColumn
	for r.Next() {
		name, err := r.Name()
		if err != nil {
			return nil, err
		}
		seq, err := r.KeySeq()
		if err != nil {
			return nil, err
		}
		key = append(key, KeyColumn{Name: name, KeySeq: seq})
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(key, func(i, j int) bool { return key[i].KeySeq < key[j].KeySeq })
	return key, nil
}
