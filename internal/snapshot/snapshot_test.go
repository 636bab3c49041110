package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndauphine/sqldialect/internal/metadata"
	"github.com/johndauphine/sqldialect/internal/probe"
)

func people() metadata.Table {
	return metadata.Table{
		Schema: "public",
		Name:   "people",
		Columns: []metadata.Column{
			{Name: "id", SQLType: metadata.TypeInteger, SQLTypeName: "integer", Position: 1, AutoIncrement: true},
			{Name: "name", SQLType: metadata.TypeVarChar, SQLTypeName: "varchar", Scale: 100, Nullable: true, Position: 2},
		},
		PrimaryKey: []metadata.KeyColumn{{Name: "id", KeySeq: 1}},
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.yaml")
	report := &probe.Report{
		ID:          "6f1c1a1e-8f3b-4a43-9d2c-0a3e4c5b6d7e",
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Identity:    probe.Identity{ProductName: "PostgreSQL", ProductVersion: "16.4", DriverName: "pgx"},
		Dialect:     "postgresql-9.4",
		Schema:      "public",
		Tables:      []metadata.Table{people()},
	}
	require.NoError(t, Save(path, report))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Hash(report.Tables), s.Hash)
	assert.Equal(t, report.ID, s.Report.ID)
	assert.Equal(t, "postgresql-9.4", s.Report.Dialect)
	assert.Equal(t, report.Tables, s.Report.Tables)
	assert.True(t, report.GeneratedAt.Equal(s.Report.GeneratedAt))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading snapshot file")
}

func TestHashStable(t *testing.T) {
	a := []metadata.Table{people()}
	b := []metadata.Table{people()}
	assert.Equal(t, Hash(a), Hash(b))
	assert.Len(t, Hash(a), 16)

	b[0].Columns[1].Nullable = false
	assert.NotEqual(t, Hash(a), Hash(b))
}

func TestDiff(t *testing.T) {
	orders := metadata.Table{Schema: "public", Name: "orders", Columns: []metadata.Column{{Name: "id"}}}
	audit := metadata.Table{Schema: "public", Name: "audit", Columns: []metadata.Column{{Name: "at"}}}

	changed := people()
	changed.Columns[1].Scale = 200
	changed.Columns = append(changed.Columns, metadata.Column{Name: "email", Position: 3})
	changed.PrimaryKey = nil

	changes := Diff([]metadata.Table{people(), orders}, []metadata.Table{changed, audit})
	require.Len(t, changes, 3)

	assert.Equal(t, Change{Table: "public.audit", Kind: Added}, changes[0])
	assert.Equal(t, Change{Table: "public.orders", Kind: Removed}, changes[1])
	assert.Equal(t, "public.people", changes[2].Table)
	assert.Equal(t, Changed, changes[2].Kind)
	assert.Equal(t, []string{
		"column changed: name",
		"column added: email",
		"primary key changed",
	}, changes[2].Details)
}

func TestDiffIdentical(t *testing.T) {
	assert.Empty(t, Diff([]metadata.Table{people()}, []metadata.Table{people()}))
}

func TestDiffAfterReloadWithoutPrimaryKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.yaml")
	logTable := metadata.Table{
		Schema:  "main",
		Name:    "log",
		Columns: []metadata.Column{{Name: "msg", SQLType: metadata.TypeVarChar, SQLTypeName: "TEXT", Nullable: true, Position: 1}},
	}
	report := &probe.Report{ID: "r1", Dialect: "sqlite-3", Schema: "main", Tables: []metadata.Table{logTable}}
	require.NoError(t, Save(path, report))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, Diff(s.Report.Tables, report.Tables))
	assert.Empty(t, Diff(report.Tables, s.Report.Tables))
	assert.Equal(t, s.Hash, Hash(s.Report.Tables))
}
