package model

// Counters tracks the invocation/suppression/overlap/failure tallies
// shared by Schedule and Action, spec.md §3.
type Counters struct {
	Invocations  uint64
	Suppressions uint64
	Overlaps     uint64
	Failures     uint64
}
