package dialect

import (
	"strings"
	"sync"

	"github.com/johndauphine/sqldialect/internal/logging"
	"github.com/johndauphine/sqldialect/internal/version"
)

type entry struct {
	factory Factory
	once    sync.Once
	dialect *Dialect
}

func (e *entry) get() *Dialect {
	e.once.Do(func() {
		e.dialect = e.factory.Create()
	})
	return e.dialect
}

// Manager resolves dialects from an ordered list of factories. Factories are
// consulted in registration order and each builds its dialect once, on first
// use. A Manager is safe for concurrent use.
type Manager struct {
	entries []*entry
}

// NewManager registers factories in the order given.
func NewManager(factories ...Factory) *Manager {
	m := &Manager{entries: make([]*entry, 0, len(factories))}
	for _, f := range factories {
		m.entries = append(m.entries, &entry{factory: f})
	}
	return m
}

// Resolve returns the dialect of the first factory that recognizes product
// and claims the version. It fails with *UnsupportedProductError when no
// factory knows the product and *UnsupportedVersionError when one does but
// none accepts the version.
func (m *Manager) Resolve(product string, v version.Number, driverVersion string, logWarnings bool) (*Dialect, error) {
	known := false
	for _, e := range m.entries {
		if !matchesProduct(e.factory.ProductNames(), product) {
			continue
		}
		known = true
		if e.factory.Claims(product, v, driverVersion, logWarnings) {
			d := e.get()
			logging.Debug("Resolved %s %s (driver %q) to dialect %s", product, v, driverVersion, d.Name())
			return d, nil
		}
	}
	if !known {
		return nil, &UnsupportedProductError{Product: product, Known: m.ProductNames()}
	}
	return nil, &UnsupportedVersionError{Product: product, Version: v, DriverVersion: driverVersion}
}

// ResolveString parses a server-reported version string and resolves it.
func (m *Manager) ResolveString(product, productVersion, driverVersion string, logWarnings bool) (*Dialect, error) {
	v, err := version.ParseProduct(productVersion)
	if err != nil {
		return nil, err
	}
	return m.Resolve(product, v, driverVersion, logWarnings)
}

// ProductNames lists every recognized product name once, in registration order.
func (m *Manager) ProductNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range m.entries {
		for _, n := range e.factory.ProductNames() {
			key := strings.ToLower(n)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, n)
		}
	}
	return names
}

// Dialects builds (if needed) and returns every registered dialect in
// registration order.
func (m *Manager) Dialects() []*Dialect {
	out := make([]*Dialect, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.get())
	}
	return out
}

// Lookup finds a registered dialect by name, ignoring case.
func (m *Manager) Lookup(name string) (*Dialect, bool) {
	for _, d := range m.Dialects() {
		if strings.EqualFold(d.Name(), name) {
			return d, true
		}
	}
	return nil, false
}
