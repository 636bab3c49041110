// Package snapshot saves inspection reports to YAML files and compares a
// saved report with a fresh one.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/johndauphine/sqldialect/internal/metadata"
	"github.com/johndauphine/sqldialect/internal/probe"
	"gopkg.in/yaml.v3"
)

// Snapshot is the on-disk form of a report.
type Snapshot struct {
	SavedAt time.Time    `yaml:"saved_at"`
	Hash    string       `yaml:"hash"` // over the tables only
	Report  probe.Report `yaml:"report"`
}

// Hash fingerprints a table list for change detection. Nil and empty
// column or key lists hash the same, so a report hashes identically before
// and after a YAML round trip.
func Hash(tables []metadata.Table) string {
	normalized := make([]metadata.Table, len(tables))
	for i, t := range tables {
		if len(t.Columns) == 0 {
			t.Columns = nil
		}
		if len(t.PrimaryKey) == 0 {
			t.PrimaryKey = nil
		}
		normalized[i] = t
	}
	data, _ := json.Marshal(normalized)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]) // First 8 bytes
}

// Save writes report to path.
func Save(path string, report *probe.Report) error {
	s := Snapshot{
		SavedAt: time.Now().UTC(),
		Hash:    Hash(report.Tables),
		Report:  *report,
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing snapshot file: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot file: %w", err)
	}
	return &s, nil
}

// ChangeKind says how a table differs between two reports.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Change is one table-level difference.
type Change struct {
	Table   string     `json:"table"`
	Kind    ChangeKind `json:"kind"`
	Details []string   `json:"details,omitempty"`
}

// Diff lists tables added, removed or changed going from old to cur,
// ordered by table name.
func Diff(old, cur []metadata.Table) []Change {
	before := index(old)
	after := index(cur)

	var changes []Change
	for name, t := range after {
		prev, ok := before[name]
		if !ok {
			changes = append(changes, Change{Table: name, Kind: Added})
			continue
		}
		if details := diffTable(prev, t); len(details) > 0 {
			changes = append(changes, Change{Table: name, Kind: Changed, Details: details})
		}
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			changes = append(changes, Change{Table: name, Kind: Removed})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Table < changes[j].Table })
	return changes
}

func index(tables []metadata.Table) map[string]metadata.Table {
	m := make(map[string]metadata.Table, len(tables))
	for _, t := range tables {
		m[t.FullName()] = t
	}
	return m
}

func diffTable(old, cur metadata.Table) []string {
	var details []string
	for _, col := range cur.Columns {
		prev, ok := old.Column(col.Name)
		switch {
		case !ok:
			details = append(details, "column added: "+col.Name)
		case prev != col:
			details = append(details, "column changed: "+col.Name)
		}
	}
	for _, col := range old.Columns {
		if _, ok := cur.Column(col.Name); !ok {
			details = append(details, "column removed: "+col.Name)
		}
	}
	if !slices.Equal(old.PrimaryKey, cur.PrimaryKey) {
		details = append(details, "primary key changed")
	}
	return details
}
