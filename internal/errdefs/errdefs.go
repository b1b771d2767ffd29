// Package errdefs defines the error conditions shared by every stage of the
// simulation. Callers test for them with errors.Is; the constructors wrap the
// sentinel so the message still names the offending value.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks an out-of-domain configuration value such as a
	// negative spread or a sample count below the minimum.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFound marks an unknown key in a reference table (material, product).
	ErrNotFound = errors.New("not found")

	// ErrValidationFailed marks inputs that are individually valid but cannot be
	// combined, e.g. sample arrays of different lengths.
	ErrValidationFailed = errors.New("validation failed")
)

// InvalidParameter returns an error wrapping ErrInvalidParameter.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// NotFound returns an error wrapping ErrNotFound that names the table and key.
func NotFound(table, key string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, table, key)
}

// ValidationFailed returns an error wrapping ErrValidationFailed.
func ValidationFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
