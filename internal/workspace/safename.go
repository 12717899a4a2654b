// Package workspace implements the per-schedule/per-action filesystem
// layout, atomic .meta/.data move discipline, and storage accounting
// described in spec.md §4.3, grounded directly on
// original_source/src/workspace.c.
package workspace

import (
	"fmt"
	"strings"
)

// SafeName percent-encodes an identifier into a directory-name-safe
// string, the Go expression of original_source/src/workspace.c's
// mksafe(): the first character must be alphanumeric (so nothing begins
// with "." or "_", both reserved for hidden/private use); subsequent
// characters may additionally be one of "-.,_"; anything else becomes an
// uppercase "%HH".
func SafeName(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if isAlnum(c) || (i > 0 && isExtraSafe(c)) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isExtraSafe(c byte) bool {
	return c == '-' || c == '.' || c == ',' || c == '_'
}
