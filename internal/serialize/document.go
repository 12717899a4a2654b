package serialize

import (
	"encoding/xml"

	"github.com/lmapcloud/lmapd/internal/model"
)

// The Document, AgentDoc, ... types below are the shared wire
// representation both jsonengine and xmlengine marshal/unmarshal —
// carrying both `json` and `xml` struct tags on the same fields, since
// the two encodings need the same scope-admission shape and stdlib's
// json/xml packages each read only the tag kind they understand. Fields
// that belong to State scope only are tagged `lmap:"state"` and are
// zero-valued (then omitted via `omitempty`/an empty XML element) when
// building a Config-scope document.

// Document is the top-level `lmap` (control) container, spec.md §6.
// XMLName is set by xmlengine immediately before marshaling (the
// YANG-prefixed "ietf-lmap-control:lmap" form on output, spec.md §6);
// encoding/xml matches the element by local name on decode regardless
// of which of the two accepted root names was present, so the prefix
// never needs to be set before unmarshaling.
type Document struct {
	XMLName      xml.Name         `json:"-" xml:"lmap"`
	Agent        *AgentDoc        `json:"agent,omitempty" xml:"agent,omitempty"`
	Capability   *CapabilityDoc   `json:"capabilities,omitempty" xml:"capabilities,omitempty"`
	Tasks        []TaskDoc        `json:"tasks,omitempty" xml:"tasks>task,omitempty"`
	Events       []EventDoc       `json:"events,omitempty" xml:"events>event,omitempty"`
	Schedules    []ScheduleDoc    `json:"schedules,omitempty" xml:"schedules>schedule,omitempty"`
	Suppressions []SuppressionDoc `json:"suppressions,omitempty" xml:"suppressions>suppression,omitempty"`
}

// ReportDocument is the top-level `report` container, spec.md §6.
type ReportDocument struct {
	XMLName xml.Name    `json:"-" xml:"report"`
	Agent   *AgentDoc   `json:"agent,omitempty" xml:"agent,omitempty"`
	Results []ResultDoc `json:"results,omitempty" xml:"results>result,omitempty"`
}

type AgentDoc struct {
	AgentID                string `json:"agent-id,omitempty" xml:"agent-id,omitempty"`
	GroupID                string `json:"group-id,omitempty" xml:"group-id,omitempty"`
	MeasurementPoint       string `json:"measurement-point,omitempty" xml:"measurement-point,omitempty"`
	ControllerTimeout      int64  `json:"controller-timeout,omitempty" xml:"controller-timeout,omitempty"`
	ReportAgentID          bool   `json:"report-agent-id,omitempty" xml:"report-agent-id,omitempty"`
	ReportGroupID          bool   `json:"report-group-id,omitempty" xml:"report-group-id,omitempty"`
	ReportMeasurementPoint bool   `json:"report-measurement-point,omitempty" xml:"report-measurement-point,omitempty"`

	// State scope only.
	LastStarted string `json:"last-started,omitempty" xml:"last-started,omitempty" lmap:"state"`
	ReportDate  string `json:"date,omitempty" xml:"date,omitempty" lmap:"state"`
}

type CapabilityDoc struct {
	Version string    `json:"version,omitempty" xml:"version,omitempty"`
	Tags    []string  `json:"tag,omitempty" xml:"tag,omitempty"`
	Tasks   []TaskDoc `json:"task,omitempty" xml:"task,omitempty"`
}

type RegistryDoc struct {
	URI   string   `json:"uri" xml:"uri"`
	Roles []string `json:"role,omitempty" xml:"role,omitempty"`
}

type OptionDoc struct {
	ID    string `json:"id" xml:"id"`
	Name  string `json:"name,omitempty" xml:"name,omitempty"`
	Value string `json:"value,omitempty" xml:"value,omitempty"`
}

type TaskDoc struct {
	Name       string        `json:"name" xml:"name"`
	Program    string        `json:"program,omitempty" xml:"program,omitempty"`
	Version    string        `json:"version,omitempty" xml:"version,omitempty"`
	Tags       []string      `json:"tag,omitempty" xml:"tag,omitempty"`
	Registries []RegistryDoc `json:"function,omitempty" xml:"function,omitempty"`
	Options    []OptionDoc   `json:"option,omitempty" xml:"option,omitempty"`
}

type CalendarDoc struct {
	Months       string `json:"month,omitempty" xml:"month,omitempty"`
	DaysOfMonth  string `json:"day-of-month,omitempty" xml:"day-of-month,omitempty"`
	DaysOfWeek   string `json:"day-of-week,omitempty" xml:"day-of-week,omitempty"`
	Hours        string `json:"hour,omitempty" xml:"hour,omitempty"`
	Minutes      string `json:"minute,omitempty" xml:"minute,omitempty"`
	Seconds      string `json:"second,omitempty" xml:"second,omitempty"`
	TimezoneName string `json:"timezone-offset,omitempty" xml:"timezone-offset,omitempty"`
}

type EventDoc struct {
	Name          string       `json:"name" xml:"name"`
	Type          string       `json:"type,omitempty" xml:"type,omitempty"`
	RandomSpread  int64        `json:"random-spread,omitempty" xml:"random-spread,omitempty"`
	CycleInterval int64        `json:"cycle-interval,omitempty" xml:"cycle-interval,omitempty"`
	Start         string       `json:"start,omitempty" xml:"start,omitempty"`
	End           string       `json:"end,omitempty" xml:"end,omitempty"`
	Interval      int64        `json:"interval,omitempty" xml:"interval,omitempty"`
	Calendar      *CalendarDoc `json:"calendar,omitempty" xml:"calendar,omitempty"`
}

type ActionDoc struct {
	Name         string      `json:"name" xml:"name"`
	Task         string      `json:"task,omitempty" xml:"task,omitempty"`
	Options      []OptionDoc `json:"option,omitempty" xml:"option,omitempty"`
	Destinations []string    `json:"destination,omitempty" xml:"destination,omitempty"`
	Tags         []string    `json:"tag,omitempty" xml:"tag,omitempty"`

	// State scope only.
	State               string `json:"state,omitempty" xml:"state,omitempty" lmap:"state"`
	Invocations         uint64 `json:"invocations,omitempty" xml:"invocations,omitempty" lmap:"state"`
	Suppressions        uint64 `json:"suppressions,omitempty" xml:"suppressions,omitempty" lmap:"state"`
	Overlaps            uint64 `json:"overlaps,omitempty" xml:"overlaps,omitempty" lmap:"state"`
	Failures            uint64 `json:"failures,omitempty" xml:"failures,omitempty" lmap:"state"`
	LastInvocation      string `json:"last-invocation,omitempty" xml:"last-invocation,omitempty" lmap:"state"`
	LastCompletion      string `json:"last-completion,omitempty" xml:"last-completion,omitempty" lmap:"state"`
	LastStatus          *int   `json:"last-status,omitempty" xml:"last-status,omitempty" lmap:"state"`
	LastMessage         string `json:"last-message,omitempty" xml:"last-message,omitempty" lmap:"state"`
	LastFailedCompletion string `json:"last-failed-completion,omitempty" xml:"last-failed-completion,omitempty" lmap:"state"`
	LastFailedStatus     *int   `json:"last-failed-status,omitempty" xml:"last-failed-status,omitempty" lmap:"state"`
	LastFailedMessage    string `json:"last-failed-message,omitempty" xml:"last-failed-message,omitempty" lmap:"state"`
}

type ScheduleDoc struct {
	Name            string      `json:"name" xml:"name"`
	Start           string      `json:"start,omitempty" xml:"start,omitempty"`
	End             string      `json:"end,omitempty" xml:"end,omitempty"`
	Duration        int64       `json:"duration,omitempty" xml:"duration,omitempty"`
	ExecutionMode   string      `json:"execution-mode,omitempty" xml:"execution-mode,omitempty"`
	Tags            []string    `json:"tag,omitempty" xml:"tag,omitempty"`
	SuppressionTags []string    `json:"suppression-tag,omitempty" xml:"suppression-tag,omitempty"`
	Actions         []ActionDoc `json:"action,omitempty" xml:"action,omitempty"`

	// State scope only.
	State          string `json:"state,omitempty" xml:"state,omitempty" lmap:"state"`
	Storage        uint64 `json:"storage,omitempty" xml:"storage,omitempty" lmap:"state"`
	Invocations    uint64 `json:"invocations,omitempty" xml:"invocations,omitempty" lmap:"state"`
	Suppressions   uint64 `json:"suppressions,omitempty" xml:"suppressions,omitempty" lmap:"state"`
	Overlaps       uint64 `json:"overlaps,omitempty" xml:"overlaps,omitempty" lmap:"state"`
	Failures       uint64 `json:"failures,omitempty" xml:"failures,omitempty" lmap:"state"`
	LastInvocation string `json:"last-invocation,omitempty" xml:"last-invocation,omitempty" lmap:"state"`
	CycleNumber    string `json:"cycle-number,omitempty" xml:"cycle-number,omitempty" lmap:"state"`
}

type SuppressionDoc struct {
	Name        string   `json:"name" xml:"name"`
	Start       string   `json:"start,omitempty" xml:"start,omitempty"`
	End         string   `json:"end,omitempty" xml:"end,omitempty"`
	Match       []string `json:"match,omitempty" xml:"match,omitempty"`
	StopRunning bool     `json:"stop-running,omitempty" xml:"stop-running,omitempty"`

	State string `json:"state,omitempty" xml:"state,omitempty" lmap:"state"`
}

type TableDoc struct {
	Function []string   `json:"function,omitempty" xml:"function,omitempty"`
	Column   []string   `json:"column,omitempty" xml:"column,omitempty"`
	Row      [][]string `json:"row,omitempty" xml:"row>value,omitempty"`
}

type ResultDoc struct {
	Schedule    string      `json:"schedule,omitempty" xml:"schedule,omitempty"`
	Action      string      `json:"action,omitempty" xml:"action,omitempty"`
	Task        string      `json:"task,omitempty" xml:"task,omitempty"`
	Options     []OptionDoc `json:"option,omitempty" xml:"option,omitempty"`
	Tags        []string    `json:"tag,omitempty" xml:"tag,omitempty"`
	Event       string      `json:"event,omitempty" xml:"event,omitempty"`
	Start       string      `json:"start,omitempty" xml:"start,omitempty"`
	End         string      `json:"end,omitempty" xml:"end,omitempty"`
	CycleNumber string      `json:"cycle-number,omitempty" xml:"cycle-number,omitempty"`
	Status      *int        `json:"status,omitempty" xml:"status,omitempty"`
	Tables      []TableDoc  `json:"table,omitempty" xml:"table,omitempty"`
}
