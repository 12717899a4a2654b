package model

import "errors"

// Model is the single rooted graph that holds the entire in-memory LMAP
// document, spec.md §3. Ownership is strictly tree-shaped; cross-entity
// references are resolved by name only, never by pointer, so the model can
// be freely merged from multiple documents before a single Validate pass.
type Model struct {
	Agent      *Agent
	Capability *Capability

	Tasks        []*Task
	Events       []*Event
	Schedules    []*Schedule
	Suppressions []*Suppression
	Results      []*Result
}

// New returns an empty Model.
func New() *Model {
	return &Model{}
}

// TaskByName looks up an executable task by name.
func (m *Model) TaskByName(name string) (*Task, bool) {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// EventByName looks up an event by name.
func (m *Model) EventByName(name string) (*Event, bool) {
	for _, e := range m.Events {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// ScheduleByName looks up a schedule by name.
func (m *Model) ScheduleByName(name string) (*Schedule, bool) {
	for _, s := range m.Schedules {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// SuppressionByName looks up a suppression by name.
func (m *Model) SuppressionByName(name string) (*Suppression, bool) {
	for _, su := range m.Suppressions {
		if su.Name == name {
			return su, true
		}
	}
	return nil, false
}

// Validate builds lookup maps once and returns every violation it finds
// (not just the first) as a slice of errors, plus any non-fatal
// Warnings, per spec.md §3 Invariants and §9's requirement that
// validation surface all problems. An empty error slice means the model
// is valid and the daemon may start; ValidateErr joins the slice into a
// single error.
func (m *Model) Validate() ([]error, Warnings) {
	var errs []error
	var warn Warnings

	taskNames := make(map[string]bool, len(m.Tasks))
	for _, t := range m.Tasks {
		if t.Name == "" {
			errs = append(errs, invalidf("task: name must not be empty"))
			continue
		}
		if taskNames[t.Name] {
			errs = append(errs, invalidf("duplicate task name %q", t.Name))
		}
		taskNames[t.Name] = true
		optionIDs := make(map[string]bool, len(t.Options))
		for _, o := range t.Options {
			if optionIDs[o.ID] {
				errs = append(errs, invalidf("task %q: duplicate option id %q", t.Name, o.ID))
			}
			optionIDs[o.ID] = true
		}
	}

	eventNames := make(map[string]bool, len(m.Events))
	for _, e := range m.Events {
		if eventNames[e.Name] {
			errs = append(errs, invalidf("duplicate event name %q", e.Name))
		}
		eventNames[e.Name] = true
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	scheduleNames := make(map[string]bool, len(m.Schedules))
	allTags := make(map[string]bool)
	for _, s := range m.Schedules {
		if scheduleNames[s.Name] {
			errs = append(errs, invalidf("duplicate schedule name %q", s.Name))
		}
		scheduleNames[s.Name] = true

		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}

		if !eventNames[s.Start] {
			errs = append(errs, notFoundf("schedule %q: start event %q does not exist", s.Name, s.Start))
		}
		if end, ok := s.End.Get(); ok {
			if !eventNames[end] {
				errs = append(errs, notFoundf("schedule %q: end event %q does not exist", s.Name, end))
			}
		}
		for _, tg := range s.Tags {
			allTags[tg] = true
		}

		optionIDs := make(map[string]bool)
		for _, a := range s.Actions {
			if !taskNames[a.Task] {
				errs = append(errs, notFoundf("action %q: task %q does not exist", a.Name, a.Task))
			}
			for _, o := range a.Options {
				if optionIDs[a.Name+"/"+o.ID] {
					errs = append(errs, invalidf("action %q: duplicate option id %q", a.Name, o.ID))
				}
				optionIDs[a.Name+"/"+o.ID] = true
			}
			for _, dst := range a.Destinations {
				if !scheduleNames[dst] && dst != s.Name {
					// dst might be declared later in Schedules; checked
					// again below once all schedule names are known.
					_ = dst
				}
			}
			for _, tg := range a.Tags {
				allTags[tg] = true
			}
		}
	}

	// second pass: destination schedules must resolve once every
	// schedule name is known (declaration order must not matter).
	for _, s := range m.Schedules {
		for _, a := range s.Actions {
			for _, dst := range a.Destinations {
				if !scheduleNames[dst] {
					errs = append(errs, notFoundf("action %q: destination schedule %q does not exist", a.Name, dst))
				}
			}
		}
	}

	suppressionNames := make(map[string]bool, len(m.Suppressions))
	for _, su := range m.Suppressions {
		if suppressionNames[su.Name] {
			errs = append(errs, invalidf("duplicate suppression name %q", su.Name))
		}
		suppressionNames[su.Name] = true

		if err := su.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if start, ok := su.Start.Get(); ok && !eventNames[start] {
			errs = append(errs, notFoundf("suppression %q: start event %q does not exist", su.Name, start))
		}
		if end, ok := su.End.Get(); ok && !eventNames[end] {
			errs = append(errs, notFoundf("suppression %q: end event %q does not exist", su.Name, end))
		}
		for _, t := range su.Match {
			if t == "*" {
				continue
			}
			if !allTags[t] {
				warn.Addf("suppression %q: match tag %q does not correspond to any known schedule/action tag", su.Name, t)
			}
		}
	}

	if m.Agent != nil {
		if err := m.Agent.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errs, warn
}

// ValidateErr is a convenience wrapper returning a single joined error
// (nil if valid), for callers that only need a yes/no.
func (m *Model) ValidateErr() error {
	errs, _ := m.Validate()
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
