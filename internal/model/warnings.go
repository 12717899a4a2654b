package model

import "fmt"

// Warnings accumulates non-fatal validation observations, such as the
// spec.md §8 suppression-tag check ("tags may be dynamic; this check
// warns rather than fails").
type Warnings []string

// Addf appends a formatted warning.
func (w *Warnings) Addf(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}
