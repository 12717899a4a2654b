package model

// SuppressionState is the suppression-specific lifecycle: it toggles
// between enabled and active via its own start/end events rather than
// following the schedule/action run-state machine (spec.md §3).
type SuppressionState int

const (
	SuppressionEnabled SuppressionState = iota
	SuppressionDisabled
	SuppressionActive
)

func (s SuppressionState) String() string {
	switch s {
	case SuppressionDisabled:
		return "disabled"
	case SuppressionActive:
		return "active"
	default:
		return "enabled"
	}
}

// Suppression is a policy object that matches tags and prevents scheduled
// execution while active, spec.md §3.
type Suppression struct {
	Name string // key

	Start Optional[string] // event ref
	End   Optional[string] // event ref

	Match       []Tag // supports wildcard "*"
	StopRunning bool

	State SuppressionState
}

// NewSuppression constructs a Suppression, initial state enabled.
func NewSuppression(name string) *Suppression {
	return &Suppression{Name: name, State: SuppressionEnabled}
}

// Matches reports whether this suppression is currently in force and its
// match set intersects tags, spec.md §4.2 step 1.
func (su *Suppression) Matches(tags []Tag) bool {
	if !su.inForce() {
		return false
	}
	for _, m := range su.Match {
		if m == "*" {
			return len(tags) > 0
		}
		for _, t := range tags {
			if t == m {
				return true
			}
		}
	}
	return false
}

// inForce reports whether the suppression currently prevents scheduled
// execution: a disabled suppression never is; an active one always is
// (its start event has fired and its end event, if any, has not); an
// enabled one with no start event of its own is, since it has no time
// window to wait for — spec.md §4.2 step 1's "any enabled suppression's
// match". An enabled suppression that does have a start event is not yet
// in force until that event fires and drives it to active (see
// internal/runner.Runner.updateSuppressions).
func (su *Suppression) inForce() bool {
	switch su.State {
	case SuppressionActive:
		return true
	case SuppressionEnabled:
		_, hasStart := su.Start.Get()
		return !hasStart
	default:
		return false
	}
}

// Validate checks invariants local to the Suppression.
func (su *Suppression) Validate() error {
	if su.Name == "" {
		return invalidf("suppression: name must not be empty")
	}
	if len(su.Match) == 0 {
		return invalidf("suppression %q: match set must not be empty", su.Name)
	}
	return nil
}
