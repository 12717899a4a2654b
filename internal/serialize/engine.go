// Package serialize defines the adapter boundary between the in-memory
// model.Model and the two wire formats (JSON, XML) that the LMAP YANG
// data model may be exchanged in, spec.md §4.5/§6. It intentionally
// carries no package-level mutable state: the active engine and the
// document scope (config/state/report) are both parameters threaded
// through call sites (internal/config, internal/control, cmd/lmapctl),
// never globals — the direct fix for spec.md §9's "process-wide
// serialization-engine selection" and "tag-dispatched handler tables
// with punned function pointers" anti-patterns.
package serialize

import (
	"io"

	"github.com/lmapcloud/lmapd/internal/model"
)

// Scope selects which subset of a schedule/action/suppression's fields a
// document may carry: Config (operator-authored, no runtime state),
// State (the daemon's own status snapshot, includes counters/timestamps/
// current-state), Report (a result document, spec.md §4.4).
type Scope int

const (
	ScopeConfig Scope = iota
	ScopeState
	ScopeReport
)

// Engine is the serialization adapter interface consumed by the core,
// spec.md §4.5. Exactly two concrete engines exist (jsonengine,
// xmlengine); which one is active is a parameter supplied by the caller
// (lmapd's `-j`/`-x` flags at startup, lmapctl's `-i` flag at invocation),
// never a package-global default silently swapped out from under
// concurrent callers.
type Engine interface {
	// Kind returns "json" or "xml", used for the lmapctl -i flag and for
	// choosing a config file's expected extension.
	Kind() string

	ParseConfig(r io.Reader, m *model.Model) error
	ParseState(r io.Reader, m *model.Model) error
	ParseReport(r io.Reader, m *model.Model) error

	RenderConfig(m *model.Model) (string, error)
	RenderState(m *model.Model) (string, error)
	RenderReport(m *model.Model) (string, error)

	// ParseTaskResults decodes a task-defined result payload (as opposed
	// to the CSV default, spec.md §4.4) and appends its tables to res.
	ParseTaskResults(r io.Reader, res *model.Result) error
}
