package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/johndauphine/sqldialect/internal/version"
)

// ErrNotSupported is returned (wrapped) when a dialect has no way to express
// an operation at all.
var ErrNotSupported = errors.New("not supported by this dialect")

// UnsupportedProductError means no registered family recognizes the product name.
type UnsupportedProductError struct {
	Product string
	Known   []string
}

func (e *UnsupportedProductError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("database product %q is not supported", e.Product)
	}
	return fmt.Sprintf("database product %q is not supported (known: %s)", e.Product, strings.Join(e.Known, ", "))
}

// UnsupportedVersionError means the product is recognized but no dialect
// claims this version / driver version combination.
type UnsupportedVersionError struct {
	Product       string
	Version       version.Number
	DriverVersion string
}

func (e *UnsupportedVersionError) Error() string {
	if e.DriverVersion != "" {
		return fmt.Sprintf("%s version %s (driver version %q) is not supported", e.Product, e.Version, e.DriverVersion)
	}
	return fmt.Sprintf("%s version %s is not supported", e.Product, e.Version)
}

// InvalidPagingRequestError rejects a LimitRows request the dialect can't honor.
type InvalidPagingRequestError struct {
	Dialect string
	Reason  string
}

func (e *InvalidPagingRequestError) Error() string {
	return fmt.Sprintf("%s: invalid paging request: %s", e.Dialect, e.Reason)
}

// MalformedSelectError means text-splice generation could not find its anchor.
type MalformedSelectError struct {
	Dialect string
	Anchor  string
	SQL     string
}

func (e *MalformedSelectError) Error() string {
	return fmt.Sprintf("%s: no %s keyword found in select: %q", e.Dialect, e.Anchor, e.SQL)
}
