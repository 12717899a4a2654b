package model

import "time"

// EventType enumerates the seven event kinds of spec.md §3/§4.1.
type EventType int

const (
	EventUnknown EventType = iota
	EventPeriodic
	EventCalendar
	EventOneOff
	EventStartup
	EventImmediate
	EventControllerLost
	EventControllerConnected
)

func (t EventType) String() string {
	switch t {
	case EventPeriodic:
		return "periodic"
	case EventCalendar:
		return "calendar"
	case EventOneOff:
		return "one-off"
	case EventStartup:
		return "startup"
	case EventImmediate:
		return "immediate"
	case EventControllerLost:
		return "controller-lost"
	case EventControllerConnected:
		return "controller-connected"
	default:
		return "unknown"
	}
}

// ParseEventType parses the spec.md §3 event type enum spelling.
func ParseEventType(s string) (EventType, error) {
	switch s {
	case "periodic":
		return EventPeriodic, nil
	case "calendar":
		return EventCalendar, nil
	case "one-off":
		return EventOneOff, nil
	case "startup":
		return EventStartup, nil
	case "immediate":
		return EventImmediate, nil
	case "controller-lost":
		return EventControllerLost, nil
	case "controller-connected":
		return EventControllerConnected, nil
	default:
		return EventUnknown, invalidf("event: unknown type %q", s)
	}
}

// Calendar holds the six calendar bitsets plus the timezone the fields are
// expressed in, spec.md §3.
type Calendar struct {
	Months       Bitset64
	DaysOfMonth  Bitset64
	DaysOfWeek   Bitset64
	Hours        Bitset64
	Minutes      Bitset64
	Seconds      Bitset64
	TimezoneName string // IANA name or fixed offset; empty means agent-local
}

// Event is a time-driven trigger, spec.md §3/§4.1.
type Event struct {
	Name          string // key
	Type          EventType
	RandomSpread  time.Duration // milliseconds granularity per spec.md, stored as Duration
	CycleInterval Optional[time.Duration]

	Start Optional[time.Time]
	End   Optional[time.Time]

	Interval time.Duration // periodic only

	Calendar Calendar // calendar only
}

// NewEvent constructs an Event of the given type with its name set.
func NewEvent(name string, typ EventType) *Event {
	return &Event{Name: name, Type: typ}
}

// SetStartEnd enforces the temporal-ordering invariant from spec.md §3:
// for any event with both start and end set, start < end.
func (e *Event) SetStartEnd(start, end Optional[time.Time]) error {
	if s, okS := start.Get(); okS {
		if en, okE := end.Get(); okE {
			if !s.Before(en) {
				return invalidf("event %q: start (%s) must be before end (%s)", e.Name, s, en)
			}
		}
	}
	e.Start = start
	e.End = end
	return nil
}

// SetInterval sets the periodic interval; only meaningful for EventPeriodic.
func (e *Event) SetInterval(d time.Duration) error {
	if d <= 0 {
		return invalidf("event %q: interval must be positive", e.Name)
	}
	e.Interval = d
	return nil
}

// Validate checks invariants local to the Event itself (cross-entity
// reference checks happen in Model.Validate).
func (e *Event) Validate() error {
	if e.Name == "" {
		return invalidf("event: name must not be empty")
	}
	if e.Type == EventUnknown {
		return invalidf("event %q: type not set", e.Name)
	}
	if s, okS := e.Start.Get(); okS {
		if en, okE := e.End.Get(); okE && !s.Before(en) {
			return invalidf("event %q: start must be before end", e.Name)
		}
	}
	if e.Type == EventPeriodic && e.Interval <= 0 {
		return invalidf("event %q: periodic event requires a positive interval", e.Name)
	}
	return nil
}
