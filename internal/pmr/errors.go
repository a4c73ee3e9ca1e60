package pmr

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch means a required column pattern or sheet was not found.
// It halts the current load; nothing downstream may run.
var ErrSchemaMismatch = errors.New("schema mismatch")

// ErrSourceUnavailable means the upload or external link could not be read
// or parsed. Same halt policy as ErrSchemaMismatch.
var ErrSourceUnavailable = errors.New("source unavailable")

// SchemaMismatchf wraps ErrSchemaMismatch with the pattern that was missing,
// so the user-visible message names what the table lacks.
func SchemaMismatchf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, fmt.Sprintf(format, args...))
}

// SourceUnavailablef wraps ErrSourceUnavailable with the unreachable source.
func SourceUnavailablef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSourceUnavailable, fmt.Sprintf(format, args...))
}
