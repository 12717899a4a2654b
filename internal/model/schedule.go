package model

import "time"

// ExecutionMode enumerates the three schedule execution semantics,
// spec.md §3/§4.2.
type ExecutionMode int

const (
	ExecutionModeUnset ExecutionMode = iota
	ExecutionModeSequential
	ExecutionModeParallel
	ExecutionModePipelined
)

func (m ExecutionMode) String() string {
	switch m {
	case ExecutionModeSequential:
		return "sequential"
	case ExecutionModeParallel:
		return "parallel"
	case ExecutionModePipelined:
		return "pipelined"
	default:
		return "pipelined" // default per spec.md §3
	}
}

// ParseExecutionMode parses the spec.md §3 execution-mode enum spelling.
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch s {
	case "", "pipelined":
		return ExecutionModePipelined, nil
	case "sequential":
		return ExecutionModeSequential, nil
	case "parallel":
		return ExecutionModeParallel, nil
	default:
		return ExecutionModeUnset, invalidf("execution-mode: unknown value %q", s)
	}
}

// Schedule is a named sequence of actions started by an event, spec.md §3.
type Schedule struct {
	Name string // key

	Start string // event ref
	End   Optional[string] // event ref
	Duration Optional[time.Duration]

	ExecutionMode ExecutionMode

	Tags           []Tag
	SuppressionTags []Tag

	Actions []*Action

	State State

	Storage  uint64
	Counters Counters

	LastInvocation Optional[time.Time]
	CycleNumber    Optional[string]

	Workspace string // directory path, set by internal/workspace.Init
}

// NewSchedule constructs a Schedule with default execution mode pipelined
// and initial state enabled, per spec.md §3.
func NewSchedule(name, start string) *Schedule {
	return &Schedule{
		Name:          name,
		Start:         start,
		ExecutionMode: ExecutionModePipelined,
		State:         StateEnabled,
	}
}

// SetExecutionMode validates and sets the execution mode, spec.md §3.
func (s *Schedule) SetExecutionMode(mode string) error {
	m, err := ParseExecutionMode(mode)
	if err != nil {
		return invalidf("schedule %q: %w", s.Name, err)
	}
	s.ExecutionMode = m
	return nil
}

// SetEndOrDuration enforces the spec.md §3 invariant: exactly one of end
// and duration may be set.
func (s *Schedule) SetEndOrDuration(end Optional[string], duration Optional[time.Duration]) error {
	if end.Set && duration.Set {
		return invalidf("schedule %q: end and duration are mutually exclusive", s.Name)
	}
	s.End = end
	s.Duration = duration
	return nil
}

// TransitionTo validates and applies a state-machine transition per
// spec.md §4.2, returning an error if the edge is illegal.
func (s *Schedule) TransitionTo(to State) error {
	next, err := transition(s.State, to)
	if err != nil {
		return invalidf("schedule %q: %w", s.Name, err)
	}
	s.State = next
	return nil
}

// Validate checks invariants local to the Schedule (cross-entity
// reference resolution happens in Model.Validate).
func (s *Schedule) Validate() error {
	if s.Name == "" {
		return invalidf("schedule: name must not be empty")
	}
	if s.Start == "" {
		return invalidf("schedule %q: start event reference must not be empty", s.Name)
	}
	if end, ok := s.End.Get(); ok && end == "" {
		return invalidf("schedule %q: end event reference must not be empty when set", s.Name)
	}
	if s.End.Set && s.Duration.Set {
		return invalidf("schedule %q: end and duration are mutually exclusive", s.Name)
	}
	seen := make(map[string]bool, len(s.Actions))
	for _, a := range s.Actions {
		if seen[a.Name] {
			return invalidf("schedule %q: duplicate action name %q", s.Name, a.Name)
		}
		seen[a.Name] = true
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Action is a single invocation of a measurement task, spec.md §3.
type Action struct {
	Name string // key within schedule

	Task    string // task ref
	Options []*Option

	Destinations []string // schedule refs; may include own schedule

	Tags            []Tag
	SuppressionTags []Tag

	State    State
	Counters Counters

	LastInvocation      Optional[time.Time]
	LastCompletion      Optional[time.Time]
	LastStatus          Optional[int]
	LastMessage         Optional[string]
	LastFailedCompletion Optional[time.Time]
	LastFailedStatus     Optional[int]
	LastFailedMessage    Optional[string]

	Workspace string // directory path
}

// NewAction constructs an Action referencing the given task, initial state
// enabled per spec.md §3.
func NewAction(name, task string) *Action {
	return &Action{Name: name, Task: task, State: StateEnabled}
}

// TransitionTo validates and applies a state-machine transition per
// spec.md §4.2.
func (a *Action) TransitionTo(to State) error {
	next, err := transition(a.State, to)
	if err != nil {
		return invalidf("action %q: %w", a.Name, err)
	}
	a.State = next
	return nil
}

// RecordCompletion updates the last-* fields after a child process exits,
// spec.md §4.2 action-execution step 7.
func (a *Action) RecordCompletion(at time.Time, exitStatus int, message string) {
	a.LastCompletion = Some(at)
	a.LastStatus = Some(exitStatus)
	if message != "" {
		a.LastMessage = Some(message)
	}
	if exitStatus != 0 {
		a.LastFailedCompletion = Some(at)
		a.LastFailedStatus = Some(exitStatus)
		if message != "" {
			a.LastFailedMessage = Some(message)
		}
		a.Counters.Failures++
	}
}

// Validate checks invariants local to the Action.
func (a *Action) Validate() error {
	if a.Name == "" {
		return invalidf("action: name must not be empty")
	}
	if a.Task == "" {
		return invalidf("action %q: task reference must not be empty", a.Name)
	}
	return nil
}
