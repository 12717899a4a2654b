package model

import "time"

// Table is an ordered result table: registries, ordered columns, ordered
// rows, spec.md §3.
type Table struct {
	Registries []Registry
	Columns    []string
	Rows       []Row
}

// Row is an ordered list of string values, spec.md §3.
type Row struct {
	Values []string
}

// Result is one action invocation's outcome, spec.md §3.
type Result struct {
	Schedule string
	Action   string
	Task     string
	Options  []*Option
	Tags     []Tag

	Event       string
	Start       time.Time
	End         Optional[time.Time]
	CycleNumber Optional[string]
	Status      Optional[int]

	Tables []*Table
}
