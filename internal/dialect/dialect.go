// Package dialect describes the SQL differences between database products and
// versions and resolves the right description for a connection.
//
// A Dialect is a capability record rather than a type hierarchy: a base record
// is built with New and each later version derives from its predecessor with
// Derive, overriding only what changed.
package dialect

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/johndauphine/sqldialect/internal/metadata"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
)

// AllRows asks LimitRows for an unlimited statement.
const AllRows = 0

// LimitRequest is the input to LimitRows. Select, From and Filter hold their
// leading keyword ("SELECT ...", "FROM ...", "WHERE ..."), as do Order and
// GroupBy ("ORDER BY ...", "GROUP BY ...").
type LimitRequest struct {
	Select   *sqlfrag.Fragment
	From     *sqlfrag.Fragment
	Filter   *sqlfrag.Fragment
	Order    string
	GroupBy  string
	RowCount int
	Offset   int64
}

// LimitFunc renders a paged statement. It is called only after the request
// has passed the common checks in Dialect.LimitRows.
type LimitFunc func(d *Dialect, req LimitRequest) (*sqlfrag.Fragment, error)

// ConcatFunc turns a single-column select into a comma-joined string expression.
type ConcatFunc func(d *Dialect, selectSQL *sqlfrag.Fragment) (*sqlfrag.Fragment, error)

// QuoteFunc quotes one identifier.
type QuoteFunc func(name string) string

// Catalog builds the metadata listings a dialect knows how to query. Each
// fragment uses "?" markers and labels its columns the way the dialect's
// metadata readers expect.
type Catalog struct {
	Tables     func(schema string) *sqlfrag.Fragment
	Columns    func(schema, table string) *sqlfrag.Fragment
	PrimaryKey func(schema, table string) *sqlfrag.Fragment
}

// Dialect is immutable once New or Derive returns and may be shared freely.
type Dialect struct {
	name          string
	product       string
	defaultSchema string

	reserved    map[string]struct{}
	offset      bool
	limit       LimitFunc
	concat      ConcatFunc
	median      string
	quote       QuoteFunc
	catalog     *Catalog
	columnKeys  metadata.ColumnKeys
	columnHooks metadata.ColumnHooks
	pkKeys      metadata.PkKeys
	pkHooks     metadata.PkHooks
}

// Option overrides one capability while a dialect is being built.
type Option func(d *Dialect)

// New builds a base dialect for product. Unset capabilities default to:
// no offset, no row limiting, no select concatenation, double-quoted
// identifiers and standard metadata labels.
func New(name, product string, opts ...Option) *Dialect {
	d := &Dialect{
		name:       name,
		product:    product,
		reserved:   make(map[string]struct{}),
		quote:      DoubleQuote,
		columnKeys: metadata.DefaultColumnKeys(),
		pkKeys:     metadata.DefaultPkKeys(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive copies d under a new name and applies opts. Capabilities not named
// by an option are inherited as they are.
func (d *Dialect) Derive(name string, opts ...Option) *Dialect {
	child := *d
	child.name = name
	child.reserved = make(map[string]struct{}, len(d.reserved))
	for w := range d.reserved {
		child.reserved[w] = struct{}{}
	}
	for _, opt := range opts {
		opt(&child)
	}
	return &child
}

// WithReservedWords adds words to the reserved set.
func WithReservedWords(words ...string) Option {
	return func(d *Dialect) {
		for _, w := range words {
			d.reserved[strings.ToLower(w)] = struct{}{}
		}
	}
}

// WithoutReservedWords removes words from an inherited reserved set.
func WithoutReservedWords(words ...string) Option {
	return func(d *Dialect) {
		for _, w := range words {
			delete(d.reserved, strings.ToLower(w))
		}
	}
}

// WithOffset sets whether paging may skip rows.
func WithOffset(supported bool) Option {
	return func(d *Dialect) { d.offset = supported }
}

// WithLimitRows sets the paging renderer. nil disables row limiting.
func WithLimitRows(fn LimitFunc) Option {
	return func(d *Dialect) { d.limit = fn }
}

// WithSelectConcat sets the string aggregation renderer. nil disables it.
func WithSelectConcat(fn ConcatFunc) Option {
	return func(d *Dialect) { d.concat = fn }
}

// WithMedianFunction names the aggregate used for medians.
func WithMedianFunction(fn string) Option {
	return func(d *Dialect) { d.median = fn }
}

// WithQuoting sets the identifier quoting function.
func WithQuoting(fn QuoteFunc) Option {
	return func(d *Dialect) { d.quote = fn }
}

// WithDefaultSchema sets the schema used when a caller doesn't name one.
func WithDefaultSchema(schema string) Option {
	return func(d *Dialect) { d.defaultSchema = schema }
}

// WithCatalog sets the metadata listing queries.
func WithCatalog(c Catalog) Option {
	return func(d *Dialect) { d.catalog = &c }
}

// WithColumnMetaData sets the column listing labels and accessor overrides.
func WithColumnMetaData(keys metadata.ColumnKeys, hooks metadata.ColumnHooks) Option {
	return func(d *Dialect) {
		d.columnKeys = keys
		d.columnHooks = hooks
	}
}

// WithPkMetaData sets the primary key listing labels and accessor overrides.
func WithPkMetaData(keys metadata.PkKeys, hooks metadata.PkHooks) Option {
	return func(d *Dialect) {
		d.pkKeys = keys
		d.pkHooks = hooks
	}
}

// DoubleQuote is the SQL standard identifier quoting.
func DoubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Name identifies the dialect, e.g. "postgresql-9.4".
func (d *Dialect) Name() string { return d.name }

// ProductName is the database product this dialect targets.
func (d *Dialect) ProductName() string { return d.product }

// DefaultSchema returns the product's default schema, possibly "".
func (d *Dialect) DefaultSchema() string { return d.defaultSchema }

// SupportsOffset reports whether LimitRows accepts a non-zero offset.
func (d *Dialect) SupportsOffset() bool { return d.offset }

// SupportsSelectConcat reports whether SelectConcat is available.
func (d *Dialect) SupportsSelectConcat() bool { return d.concat != nil }

// SupportsLimit reports whether LimitRows can bound a result.
func (d *Dialect) SupportsLimit() bool { return d.limit != nil }

// IsReserved reports whether word is reserved. Matching ignores case.
func (d *Dialect) IsReserved(word string) bool {
	_, ok := d.reserved[strings.ToLower(word)]
	return ok
}

// ReservedWords returns the reserved set, lower-cased and sorted.
func (d *Dialect) ReservedWords() []string {
	words := make([]string, 0, len(d.reserved))
	for w := range d.reserved {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// MedianFunction returns the median aggregate, if the dialect has one.
func (d *Dialect) MedianFunction() (string, bool) {
	return d.median, d.median != ""
}

// QuoteIdentifier always quotes name.
func (d *Dialect) QuoteIdentifier(name string) string {
	return d.quote(name)
}

// ColumnSelectName quotes name only when it is reserved or not a plain identifier.
func (d *Dialect) ColumnSelectName(name string) string {
	if d.IsReserved(name) || !isPlainIdentifier(name) {
		return d.quote(name)
	}
	return name
}

func isPlainIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// AppendInClause appends "IN (?, ?, ...)" with one marker per param.
// An empty list renders "IN (NULL)", which matches nothing.
func (d *Dialect) AppendInClause(sql *sqlfrag.Fragment, params []any) *sqlfrag.Fragment {
	if len(params) == 0 {
		return sql.Append("IN (NULL)")
	}
	markers := strings.Repeat("?, ", len(params))
	sql.Append("IN (" + markers[:len(markers)-2] + ")")
	return sql.AddParams(params...)
}

// LimitRows renders a bounded select. RowCount AllRows returns the plain
// statement. Requests the dialect cannot honor fail with
// *InvalidPagingRequestError; nothing is silently left unbounded.
func (d *Dialect) LimitRows(req LimitRequest) (*sqlfrag.Fragment, error) {
	if req.Select == nil || req.Select.IsEmpty() {
		return nil, d.invalidPaging("select clause is required")
	}
	if req.RowCount < 0 {
		return nil, d.invalidPaging("row count must not be negative, got " + strconv.Itoa(req.RowCount))
	}
	if req.Offset < 0 {
		return nil, d.invalidPaging("offset must not be negative, got " + strconv.FormatInt(req.Offset, 10))
	}
	if req.RowCount == AllRows {
		if req.Offset > 0 {
			return nil, d.invalidPaging("offset requires a row count")
		}
		return AssembleSelect(req), nil
	}
	if req.Offset > math.MaxInt64-int64(req.RowCount) {
		return nil, d.invalidPaging("offset plus row count overflows")
	}
	if req.Offset > 0 && !d.offset {
		return nil, d.invalidPaging("offset is not supported")
	}
	if d.limit == nil {
		return nil, d.invalidPaging("row limiting is not supported")
	}
	return d.limit(d, req)
}

func (d *Dialect) invalidPaging(reason string) error {
	return &InvalidPagingRequestError{Dialect: d.name, Reason: reason}
}

// SelectConcat wraps a single-column select so it yields one comma-separated
// string.
func (d *Dialect) SelectConcat(selectSQL *sqlfrag.Fragment) (*sqlfrag.Fragment, error) {
	if d.concat == nil {
		return nil, fmt.Errorf("%s: select concatenation: %w", d.name, ErrNotSupported)
	}
	if selectSQL == nil || selectSQL.IsEmpty() {
		return nil, &MalformedSelectError{Dialect: d.name, Anchor: "SELECT"}
	}
	return d.concat(d, selectSQL)
}

// ColumnMetaDataReader wraps a column listing with this dialect's labels.
func (d *Dialect) ColumnMetaDataReader(rows metadata.Rows) *metadata.ColumnReader {
	return metadata.NewColumnReader(rows, d.columnKeys, d.columnHooks)
}

// PkMetaDataReader wraps a primary key listing with this dialect's labels.
func (d *Dialect) PkMetaDataReader(rows metadata.Rows) *metadata.PkReader {
	return metadata.NewPkReader(rows, d.pkKeys, d.pkHooks)
}

// Catalog returns the metadata listing queries, if the dialect has them.
func (d *Dialect) Catalog() (Catalog, bool) {
	if d.catalog == nil {
		return Catalog{}, false
	}
	return *d.catalog, true
}

// String returns the dialect name.
func (d *Dialect) String() string {
	return d.name
}
