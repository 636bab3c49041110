package dialect

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndauphine/sqldialect/internal/logging"
	"github.com/johndauphine/sqldialect/internal/version"
)

type countingBuild struct {
	mu    sync.Mutex
	calls int
	name  string
}

func (c *countingBuild) build() *Dialect {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return New(c.name, "TestDB")
}

func testManager() (*Manager, *countingBuild, *countingBuild) {
	old := &countingBuild{name: "test-1"}
	current := &countingBuild{name: "test-2"}
	m := NewManager(
		&RangeFactory{Products: []string{"TestDB"}, Min: version.MustParse("1.0"), Below: version.MustParse("2.0"), Build: old.build},
		&RangeFactory{Products: []string{"TestDB", "Test Database"}, Min: version.MustParse("2.0"), TestedBelow: version.MustParse("3.0"), Build: current.build},
		&DriverPrefixFactory{Products: []string{"Other"}, Prefix: "4.1", Build: func() *Dialect { return New("other", "Other") }},
	)
	return m, old, current
}

func TestResolveRanges(t *testing.T) {
	m, _, _ := testManager()

	tests := []struct {
		product string
		version string
		want    string
	}{
		{"TestDB", "1.0", "test-1"},
		{"testdb", "1.9", "test-1"},
		{"TestDB", "2.0", "test-2"},
		{"Test Database", "2.5", "test-2"},
		{"TestDB", "7.3", "test-2"},
	}
	for _, tt := range tests {
		d, err := m.Resolve(tt.product, version.MustParse(tt.version), "", false)
		require.NoError(t, err, "%s %s", tt.product, tt.version)
		assert.Equal(t, tt.want, d.Name(), "%s %s", tt.product, tt.version)
	}
}

func TestResolveUnsupportedProduct(t *testing.T) {
	m, _, _ := testManager()
	_, err := m.Resolve("Oracle", version.MustParse("12.0"), "", false)
	var perr *UnsupportedProductError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Oracle", perr.Product)
	assert.Equal(t, []string{"TestDB", "Test Database", "Other"}, perr.Known)
}

func TestResolveUnsupportedVersion(t *testing.T) {
	m, _, _ := testManager()
	_, err := m.Resolve("TestDB", version.MustParse("0.9"), "", false)
	var verr *UnsupportedVersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, version.MustParse("0.9"), verr.Version)
}

func TestResolveDriverPrefix(t *testing.T) {
	m, _, _ := testManager()

	d, err := m.Resolve("Other", version.MustParse("99.0"), "4.1.3", false)
	require.NoError(t, err)
	assert.Equal(t, "other", d.Name())

	_, err = m.Resolve("Other", version.MustParse("4.1"), "4.2", false)
	var verr *UnsupportedVersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "4.2", verr.DriverVersion)
}

func TestResolveBuildsOnce(t *testing.T) {
	m, old, current := testManager()

	var wg sync.WaitGroup
	results := make([]*Dialect, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := m.Resolve("TestDB", version.MustParse("2.1"), "", false)
			if err == nil {
				results[i] = d
			}
		}(i)
	}
	wg.Wait()

	for _, d := range results {
		assert.Same(t, results[0], d)
	}
	assert.Equal(t, 1, current.calls)
	assert.Equal(t, 0, old.calls, "unused factories are never built")
}

func TestResolveWarnsAboveTestedRange(t *testing.T) {
	m, _, _ := testManager()
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(nil)

	_, err := m.Resolve("TestDB", version.MustParse("2.9"), "", true)
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	_, err = m.Resolve("TestDB", version.MustParse("3.0"), "", false)
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "no warning when warnings are off")

	_, err = m.Resolve("TestDB", version.MustParse("3.0"), "", true)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[WARN] TestDB version 3.0 has not been tested")
}

func TestResolveString(t *testing.T) {
	m, _, _ := testManager()

	d, err := m.ResolveString("TestDB", "1.5.2 (build 77)", "", false)
	require.NoError(t, err)
	assert.Equal(t, "test-1", d.Name())

	_, err = m.ResolveString("TestDB", "unknown", "", false)
	var perr *version.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestLookup(t *testing.T) {
	m, _, _ := testManager()
	d, ok := m.Lookup("TEST-2")
	require.True(t, ok)
	assert.Equal(t, "test-2", d.Name())

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
	assert.Len(t, m.Dialects(), 3)
}
