package model

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// invalidf wraps a formatted message as an invalid-argument class error,
// matching spec.md §7 class 2 (validation error).
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errdefs.ErrInvalidArgument)
}

// notFoundf wraps a formatted message as a not-found class error, used by
// referential-integrity checks (dangling task/event/schedule references).
func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errdefs.ErrNotFound)
}

// IsValidationError reports whether err is a model validation failure
// (range/enum check or referential integrity), spec.md §7 class 2.
func IsValidationError(err error) bool {
	return errdefs.IsInvalidArgument(err) || errdefs.IsNotFound(err)
}
