// Package exitcodes defines standard exit codes for CLI operations so that
// scripts and schedulers can tell retryable failures from permanent ones.
package exitcodes

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
	"github.com/johndauphine/sqldialect/internal/version"
)

// Exit codes. 4 and 6 are unassigned.
const (
	// Success - command completed without errors
	Success = 0

	// ConfigError - configuration/YAML parsing or bad flag values (non-recoverable, don't retry)
	ConfigError = 1

	// ConnectionError - database connection or ping errors (recoverable)
	ConnectionError = 2

	// CatalogError - reading tables, columns or keys from the catalog failed (non-recoverable)
	CatalogError = 3

	// Cancelled - user cancelled via SIGINT/SIGTERM or a deadline passed (recoverable)
	Cancelled = 5

	// IOError - file I/O errors (recoverable)
	IOError = 7

	// UnsupportedDatabase - no dialect for the product or version (non-recoverable)
	UnsupportedDatabase = 8

	// GenerationError - SQL generation rejected the request (non-recoverable)
	GenerationError = 9
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// FromError determines the appropriate exit code for an error.
// Typed errors are classified first, then error messages.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	// Check if it's already an ExitError
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Cancelled
	}

	var (
		productErr *dialect.UnsupportedProductError
		versionErr *dialect.UnsupportedVersionError
	)
	if errors.As(err, &productErr) || errors.As(err, &versionErr) {
		return UnsupportedDatabase
	}

	var (
		pagingErr    *dialect.InvalidPagingRequestError
		malformedErr *dialect.MalformedSelectError
		indexErr     *sqlfrag.IndexError
	)
	if errors.As(err, &pagingErr) || errors.As(err, &malformedErr) || errors.As(err, &indexErr) ||
		errors.Is(err, dialect.ErrNotSupported) || errors.Is(err, sqlfrag.ErrInsertPlaceholder) {
		return GenerationError
	}

	var parseErr *version.ParseError
	if errors.As(err, &parseErr) {
		return ConfigError
	}

	// Check for os.PathError first (file not found, permission denied, etc.)
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return IOError
	}

	errStr := strings.ToLower(err.Error())

	// IO errors - check early for file-related errors (exit code 7)
	if containsAny(errStr, []string{
		"no such file",
		"file not found",
		"permission denied",
		"is a directory",
		"not a directory",
	}) {
		return IOError
	}

	// Config errors (exit code 1) - parsing issues, not connection problems
	if containsAny(errStr, []string{
		"yaml:",
		"json:",
		"unmarshal",
		"invalid configuration",
		"missing required",
		"invalid value",
		"parsing config",
	}) && !containsAny(errStr, []string{"connection", "connect", "dial"}) {
		return ConfigError
	}

	// Connection errors (exit code 2)
	if containsAny(errStr, []string{
		"connection",
		"connect",
		"dial",
		"refused",
		"timeout",
		"unreachable",
		"no such host",
		"network",
		"ping",
		"login failed",
		"authentication",
	}) {
		return ConnectionError
	}

	// Cancelled (exit code 5)
	if containsAny(errStr, []string{
		"cancel",
		"interrupt",
	}) {
		return Cancelled
	}

	// Catalog errors (exit code 3)
	if containsAny(errStr, []string{
		"catalog",
		"metadata",
		"no such table",
		"listing tables",
		"reading columns",
		"primary key",
	}) {
		return CatalogError
	}

	// Default to generation error for unknown errors
	return GenerationError
}

// IsRecoverable returns true if the error is recoverable (safe to retry).
func IsRecoverable(code int) bool {
	switch code {
	case ConnectionError, Cancelled, IOError:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the exit code.
func Description(code int) string {
	switch code {
	case Success:
		return "success"
	case ConfigError:
		return "configuration error"
	case ConnectionError:
		return "connection error (recoverable)"
	case CatalogError:
		return "catalog error"
	case Cancelled:
		return "cancelled (recoverable)"
	case IOError:
		return "I/O error (recoverable)"
	case UnsupportedDatabase:
		return "unsupported database"
	case GenerationError:
		return "SQL generation error"
	default:
		return "unknown error"
	}
}

func containsAny(s string, substrs []string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
