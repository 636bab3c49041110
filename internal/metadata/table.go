package metadata

// Table is the normalized description of one table.
type Table struct {
	Schema     string      `json:"schema" yaml:"schema"`
	Name       string      `json:"name" yaml:"name"`
	Columns    []Column    `json:"columns" yaml:"columns"`
	PrimaryKey []KeyColumn `json:"primary_key" yaml:"primary_key"`
}

// FullName returns the qualified table name (schema.table).
func (t *Table) FullName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// HasPK returns true if the table has a primary key.
func (t *Table) HasPK() bool {
	return len(t.PrimaryKey) > 0
}

// PKColumns returns full column metadata for each primary key column, in key order.
func (t *Table) PKColumns() []Column {
	var cols []Column
	for _, key := range t.PrimaryKey {
		for _, col := range t.Columns {
			if col.Name == key.Name {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}
