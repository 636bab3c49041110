package dialect

import (
	"strings"

	"github.com/johndauphine/sqldialect/internal/logging"
	"github.com/johndauphine/sqldialect/internal/version"
)

// Factory decides whether it handles a product/version and builds the
// matching dialect.
type Factory interface {
	// ProductNames lists the product names this factory recognizes.
	ProductNames() []string
	// Claims reports whether this factory handles the given product version.
	// When logWarnings is set it may log about versions outside the tested range.
	Claims(product string, v version.Number, driverVersion string, logWarnings bool) bool
	// Create builds the dialect. A Manager calls it at most once.
	Create() *Dialect
}

// RangeFactory claims product versions in [Min, Below). A zero Below leaves
// the range open-ended. Claimed versions at or above a non-zero TestedBelow
// are still accepted but logged as untested.
type RangeFactory struct {
	Products    []string
	Min         version.Number
	Below       version.Number
	TestedBelow version.Number
	Build       func() *Dialect
}

func (f *RangeFactory) ProductNames() []string { return f.Products }

func (f *RangeFactory) Claims(product string, v version.Number, _ string, logWarnings bool) bool {
	if !matchesProduct(f.Products, product) || v.Less(f.Min) {
		return false
	}
	if f.Below != (version.Number{}) && !v.Less(f.Below) {
		return false
	}
	if logWarnings && f.TestedBelow != (version.Number{}) && !v.Less(f.TestedBelow) {
		logging.Warn("%s version %s has not been tested; newest supported dialect will be used", product, v)
	}
	return true
}

func (f *RangeFactory) Create() *Dialect { return f.Build() }

// DriverPrefixFactory claims any version of its products when the JDBC-style
// driver version starts with Prefix. Some products report server versions
// that say nothing about the SQL they accept.
type DriverPrefixFactory struct {
	Products []string
	Prefix   string
	Build    func() *Dialect
}

func (f *DriverPrefixFactory) ProductNames() []string { return f.Products }

func (f *DriverPrefixFactory) Claims(product string, _ version.Number, driverVersion string, _ bool) bool {
	return matchesProduct(f.Products, product) && strings.HasPrefix(driverVersion, f.Prefix)
}

func (f *DriverPrefixFactory) Create() *Dialect { return f.Build() }

func matchesProduct(names []string, product string) bool {
	for _, n := range names {
		if strings.EqualFold(n, product) {
			return true
		}
	}
	return false
}
