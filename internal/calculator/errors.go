package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPackage is returned when a package type has no catalog entry.
	ErrUnknownPackage = errors.New("unknown package type")
	// ErrInvalidSessionHours is returned when the session duration is negative.
	ErrInvalidSessionHours = errors.New("session hours must be non-negative")
	// ErrInvalidDaysPerWeek is returned when a subject frequency is negative.
	ErrInvalidDaysPerWeek = errors.New("days per week must be non-negative")
	// ErrInvalidCatalog is returned when a catalog definition violates its rules.
	ErrInvalidCatalog = errors.New("invalid package catalog")
)

// UnknownPackageError reports the package type that could not be resolved.
type UnknownPackageError struct {
	Type PackageType
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("unknown package type %q", string(e.Type))
}

func (e *UnknownPackageError) Unwrap() error {
	return ErrUnknownPackage
}
