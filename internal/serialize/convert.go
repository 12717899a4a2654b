package serialize

import (
	"strconv"
	"strings"
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
)

const timeLayout = time.RFC3339

func formatTime(t model.Optional[time.Time]) string {
	if v, ok := t.Get(); ok {
		return v.UTC().Format(timeLayout)
	}
	return ""
}

func parseTimeField(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// bitsetString renders a calendar field as "*" (wildcard) or a
// comma-separated list of values, spec.md §3's calendar bitset encoding.
func bitsetString(b model.Bitset64) string {
	if b.Wildcard {
		return "*"
	}
	values := b.Values()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// parseBitset is the inverse of bitsetString.
func parseBitset(s string) model.Bitset64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Bitset64{}
	}
	if s == "*" {
		return model.Wildcard64()
	}
	var values []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			values = append(values, n)
		}
	}
	return model.NewBitset64(values...)
}

// FromModel builds the config/state wire Document for m, admitting
// runtime-state fields only when scope is ScopeState — the scope
// parameter is threaded through this single call, never read from a
// package global (spec.md §9).
func FromModel(m *model.Model, scope Scope) *Document {
	doc := &Document{}
	if m.Agent != nil {
		doc.Agent = agentToDoc(m.Agent, scope)
	}
	if m.Capability != nil {
		doc.Capability = capabilityToDoc(m.Capability)
	}
	for _, t := range m.Tasks {
		doc.Tasks = append(doc.Tasks, taskToDoc(t))
	}
	for _, e := range m.Events {
		doc.Events = append(doc.Events, eventToDoc(e))
	}
	for _, s := range m.Schedules {
		doc.Schedules = append(doc.Schedules, scheduleToDoc(s, scope))
	}
	for _, su := range m.Suppressions {
		doc.Suppressions = append(doc.Suppressions, suppressionToDoc(su, scope))
	}
	return doc
}

// MergeInto mutates m from doc, per spec.md §6's merge rule: list-valued
// collections append, scalar top-level fields (here, Agent and
// Capability) are
// last-writer-wins. Scope controls whether state-only fields (agent
// timestamps, schedule/action counters and State) are trusted from the
// input — a config-scope parse never lets an operator inject fake state.
func MergeInto(doc *Document, m *model.Model, scope Scope) error {
	if doc.Agent != nil {
		a, err := agentFromDoc(doc.Agent, scope)
		if err != nil {
			return err
		}
		m.Agent = a
	}
	if doc.Capability != nil {
		m.Capability = capabilityFromDoc(doc.Capability)
	}
	for _, td := range doc.Tasks {
		m.Tasks = append(m.Tasks, taskFromDoc(td))
	}
	for _, ed := range doc.Events {
		ev, err := eventFromDoc(ed)
		if err != nil {
			return err
		}
		m.Events = append(m.Events, ev)
	}
	for _, sd := range doc.Schedules {
		s, err := scheduleFromDoc(sd, scope)
		if err != nil {
			return err
		}
		m.Schedules = append(m.Schedules, s)
	}
	for _, sud := range doc.Suppressions {
		m.Suppressions = append(m.Suppressions, suppressionFromDoc(sud, scope))
	}
	return nil
}

func agentToDoc(a *model.Agent, scope Scope) *AgentDoc {
	d := &AgentDoc{
		AgentID:                a.AgentID.OrElse(""),
		GroupID:                a.GroupID.OrElse(""),
		MeasurementPoint:       a.MeasurementPoint.OrElse(""),
		ControllerTimeout:      int64(a.ControllerTimeout / time.Second),
		ReportAgentID:          a.ReportAgentID,
		ReportGroupID:          a.ReportGroupID,
		ReportMeasurementPoint: a.ReportMeasurementPoint,
	}
	if scope == ScopeState {
		d.LastStarted = formatTime(a.LastStarted)
		d.ReportDate = formatTime(a.ReportDate)
	}
	return d
}

func agentFromDoc(d *AgentDoc, scope Scope) (*model.Agent, error) {
	a := model.NewAgent()
	if d.AgentID != "" {
		if err := a.SetAgentID(d.AgentID); err != nil {
			return nil, err
		}
	}
	if d.GroupID != "" {
		a.GroupID = model.Some(d.GroupID)
	}
	if d.MeasurementPoint != "" {
		a.MeasurementPoint = model.Some(d.MeasurementPoint)
	}
	a.ControllerTimeout = time.Duration(d.ControllerTimeout) * time.Second
	if err := a.SetReportAgentID(d.ReportAgentID); err != nil {
		return nil, err
	}
	if err := a.SetReportGroupID(d.ReportGroupID); err != nil {
		return nil, err
	}
	if err := a.SetReportMeasurementPoint(d.ReportMeasurementPoint); err != nil {
		return nil, err
	}
	if scope == ScopeState {
		if t, ok := parseTimeField(d.LastStarted); ok {
			a.LastStarted = model.Some(t)
		}
		if t, ok := parseTimeField(d.ReportDate); ok {
			a.ReportDate = model.Some(t)
		}
	}
	return a, nil
}

func capabilityToDoc(c *model.Capability) *CapabilityDoc {
	d := &CapabilityDoc{Version: c.Version.OrElse(""), Tags: append([]string(nil), c.Tags...)}
	for _, t := range c.Tasks {
		d.Tasks = append(d.Tasks, taskToDoc(t))
	}
	return d
}

func capabilityFromDoc(d *CapabilityDoc) *model.Capability {
	c := &model.Capability{Tags: append([]string(nil), d.Tags...)}
	if d.Version != "" {
		c.Version = model.Some(d.Version)
	}
	for _, td := range d.Tasks {
		c.Tasks = append(c.Tasks, taskFromDoc(td))
	}
	return c
}

func taskToDoc(t *model.Task) TaskDoc {
	d := TaskDoc{Name: t.Name, Program: t.Program, Version: t.Version.OrElse(""), Tags: append([]string(nil), t.Tags...)}
	for _, r := range t.Registries {
		d.Registries = append(d.Registries, RegistryDoc{URI: r.URI, Roles: r.Roles})
	}
	for _, o := range t.Options {
		d.Options = append(d.Options, optionToDoc(o))
	}
	return d
}

func taskFromDoc(d TaskDoc) *model.Task {
	t := &model.Task{Name: d.Name, Program: d.Program, Tags: append([]string(nil), d.Tags...)}
	if d.Version != "" {
		t.Version = model.Some(d.Version)
	}
	for _, r := range d.Registries {
		t.Registries = append(t.Registries, model.Registry{URI: r.URI, Roles: r.Roles})
	}
	for _, o := range d.Options {
		t.Options = append(t.Options, optionFromDoc(o))
	}
	return t
}

func optionToDoc(o *model.Option) OptionDoc {
	return OptionDoc{ID: o.ID, Name: o.Name.OrElse(""), Value: o.Value.OrElse("")}
}

func optionFromDoc(d OptionDoc) *model.Option {
	o := &model.Option{ID: d.ID}
	if d.Name != "" {
		o.Name = model.Some(d.Name)
	}
	if d.Value != "" {
		o.Value = model.Some(d.Value)
	}
	return o
}

func eventToDoc(e *model.Event) EventDoc {
	d := EventDoc{
		Name:         e.Name,
		Type:         e.Type.String(),
		RandomSpread: int64(e.RandomSpread / time.Millisecond),
		Start:        formatTime(e.Start),
		End:          formatTime(e.End),
		Interval:     int64(e.Interval / time.Second),
	}
	if ci, ok := e.CycleInterval.Get(); ok {
		d.CycleInterval = int64(ci / time.Second)
	}
	if e.Type == model.EventCalendar {
		d.Calendar = &CalendarDoc{
			Months:       bitsetString(e.Calendar.Months),
			DaysOfMonth:  bitsetString(e.Calendar.DaysOfMonth),
			DaysOfWeek:   bitsetString(e.Calendar.DaysOfWeek),
			Hours:        bitsetString(e.Calendar.Hours),
			Minutes:      bitsetString(e.Calendar.Minutes),
			Seconds:      bitsetString(e.Calendar.Seconds),
			TimezoneName: e.Calendar.TimezoneName,
		}
	}
	return d
}

func eventFromDoc(d EventDoc) (*model.Event, error) {
	typ, err := model.ParseEventType(d.Type)
	if err != nil {
		return nil, err
	}
	e := model.NewEvent(d.Name, typ)
	e.RandomSpread = time.Duration(d.RandomSpread) * time.Millisecond
	if d.CycleInterval > 0 {
		e.CycleInterval = model.Some(time.Duration(d.CycleInterval) * time.Second)
	}
	start, hasStart := parseTimeField(d.Start)
	end, hasEnd := parseTimeField(d.End)
	var startOpt, endOpt model.Optional[time.Time]
	if hasStart {
		startOpt = model.Some(start)
	}
	if hasEnd {
		endOpt = model.Some(end)
	}
	if err := e.SetStartEnd(startOpt, endOpt); err != nil {
		return nil, err
	}
	if d.Interval > 0 {
		if err := e.SetInterval(time.Duration(d.Interval) * time.Second); err != nil {
			return nil, err
		}
	}
	if d.Calendar != nil {
		e.Calendar = model.Calendar{
			Months:       parseBitset(d.Calendar.Months),
			DaysOfMonth:  parseBitset(d.Calendar.DaysOfMonth),
			DaysOfWeek:   parseBitset(d.Calendar.DaysOfWeek),
			Hours:        parseBitset(d.Calendar.Hours),
			Minutes:      parseBitset(d.Calendar.Minutes),
			Seconds:      parseBitset(d.Calendar.Seconds),
			TimezoneName: d.Calendar.TimezoneName,
		}
	}
	return e, nil
}

func scheduleToDoc(s *model.Schedule, scope Scope) ScheduleDoc {
	d := ScheduleDoc{
		Name:            s.Name,
		Start:           s.Start,
		ExecutionMode:   s.ExecutionMode.String(),
		Tags:            append([]string(nil), s.Tags...),
		SuppressionTags: append([]string(nil), s.SuppressionTags...),
	}
	if end, ok := s.End.Get(); ok {
		d.End = end
	}
	if dur, ok := s.Duration.Get(); ok {
		d.Duration = int64(dur / time.Second)
	}
	for _, a := range s.Actions {
		d.Actions = append(d.Actions, actionToDoc(a, scope))
	}
	if scope == ScopeState {
		d.State = s.State.String()
		d.Storage = s.Storage
		d.Invocations = s.Counters.Invocations
		d.Suppressions = s.Counters.Suppressions
		d.Overlaps = s.Counters.Overlaps
		d.Failures = s.Counters.Failures
		d.LastInvocation = formatTime(s.LastInvocation)
		d.CycleNumber = s.CycleNumber.OrElse("")
	}
	return d
}

func scheduleFromDoc(d ScheduleDoc, scope Scope) (*model.Schedule, error) {
	s := model.NewSchedule(d.Name, d.Start)
	if err := s.SetExecutionMode(d.ExecutionMode); err != nil {
		return nil, err
	}
	s.Tags = append([]string(nil), d.Tags...)
	s.SuppressionTags = append([]string(nil), d.SuppressionTags...)

	var endOpt model.Optional[string]
	var durOpt model.Optional[time.Duration]
	if d.End != "" {
		endOpt = model.Some(d.End)
	}
	if d.Duration > 0 {
		durOpt = model.Some(time.Duration(d.Duration) * time.Second)
	}
	if err := s.SetEndOrDuration(endOpt, durOpt); err != nil {
		return nil, err
	}
	for _, ad := range d.Actions {
		s.Actions = append(s.Actions, actionFromDoc(ad, scope))
	}
	if scope == ScopeState {
		if st, err := model.ParseState(d.State); err == nil {
			s.State = st
		}
		s.Storage = d.Storage
		s.Counters = model.Counters{
			Invocations:  d.Invocations,
			Suppressions: d.Suppressions,
			Overlaps:     d.Overlaps,
			Failures:     d.Failures,
		}
		if t, ok := parseTimeField(d.LastInvocation); ok {
			s.LastInvocation = model.Some(t)
		}
		if d.CycleNumber != "" {
			s.CycleNumber = model.Some(d.CycleNumber)
		}
	}
	return s, nil
}

func actionToDoc(a *model.Action, scope Scope) ActionDoc {
	d := ActionDoc{
		Name:         a.Name,
		Task:         a.Task,
		Destinations: append([]string(nil), a.Destinations...),
		Tags:         append([]string(nil), a.Tags...),
	}
	for _, o := range a.Options {
		d.Options = append(d.Options, optionToDoc(o))
	}
	if scope == ScopeState {
		d.State = a.State.String()
		d.Invocations = a.Counters.Invocations
		d.Suppressions = a.Counters.Suppressions
		d.Overlaps = a.Counters.Overlaps
		d.Failures = a.Counters.Failures
		d.LastInvocation = formatTime(a.LastInvocation)
		d.LastCompletion = formatTime(a.LastCompletion)
		if v, ok := a.LastStatus.Get(); ok {
			d.LastStatus = &v
		}
		d.LastMessage = a.LastMessage.OrElse("")
		d.LastFailedCompletion = formatTime(a.LastFailedCompletion)
		if v, ok := a.LastFailedStatus.Get(); ok {
			d.LastFailedStatus = &v
		}
		d.LastFailedMessage = a.LastFailedMessage.OrElse("")
	}
	return d
}

func actionFromDoc(d ActionDoc, scope Scope) *model.Action {
	a := model.NewAction(d.Name, d.Task)
	a.Destinations = append([]string(nil), d.Destinations...)
	a.Tags = append([]string(nil), d.Tags...)
	for _, od := range d.Options {
		a.Options = append(a.Options, optionFromDoc(od))
	}
	if scope == ScopeState {
		if st, err := model.ParseState(d.State); err == nil {
			a.State = st
		}
		a.Counters = model.Counters{
			Invocations:  d.Invocations,
			Suppressions: d.Suppressions,
			Overlaps:     d.Overlaps,
			Failures:     d.Failures,
		}
		if t, ok := parseTimeField(d.LastInvocation); ok {
			a.LastInvocation = model.Some(t)
		}
		if t, ok := parseTimeField(d.LastCompletion); ok {
			a.LastCompletion = model.Some(t)
		}
		if d.LastStatus != nil {
			a.LastStatus = model.Some(*d.LastStatus)
		}
		if d.LastMessage != "" {
			a.LastMessage = model.Some(d.LastMessage)
		}
	}
	return a
}

func suppressionToDoc(su *model.Suppression, scope Scope) SuppressionDoc {
	d := SuppressionDoc{
		Name:        su.Name,
		Match:       append([]string(nil), su.Match...),
		StopRunning: su.StopRunning,
	}
	if start, ok := su.Start.Get(); ok {
		d.Start = start
	}
	if end, ok := su.End.Get(); ok {
		d.End = end
	}
	if scope == ScopeState {
		d.State = su.State.String()
	}
	return d
}

func suppressionFromDoc(d SuppressionDoc, scope Scope) *model.Suppression {
	su := model.NewSuppression(d.Name)
	su.Match = append([]string(nil), d.Match...)
	su.StopRunning = d.StopRunning
	if d.Start != "" {
		su.Start = model.Some(d.Start)
	}
	if d.End != "" {
		su.End = model.Some(d.End)
	}
	if scope == ScopeState {
		switch d.State {
		case "disabled":
			su.State = model.SuppressionDisabled
		case "active":
			su.State = model.SuppressionActive
		default:
			su.State = model.SuppressionEnabled
		}
	}
	return su
}

func resultToDoc(r *model.Result) ResultDoc {
	d := ResultDoc{
		Schedule:    r.Schedule,
		Action:      r.Action,
		Task:        r.Task,
		Tags:        append([]string(nil), r.Tags...),
		Event:       r.Event,
		Start:       r.Start.UTC().Format(timeLayout),
		CycleNumber: r.CycleNumber.OrElse(""),
	}
	for _, o := range r.Options {
		d.Options = append(d.Options, optionToDoc(o))
	}
	if end, ok := r.End.Get(); ok {
		d.End = end.UTC().Format(timeLayout)
	}
	if status, ok := r.Status.Get(); ok {
		d.Status = &status
	}
	for _, tab := range r.Tables {
		d.Tables = append(d.Tables, tableToDoc(tab))
	}
	return d
}

func resultFromDoc(d ResultDoc) *model.Result {
	r := &model.Result{
		Schedule: d.Schedule,
		Action:   d.Action,
		Task:     d.Task,
		Tags:     append([]string(nil), d.Tags...),
		Event:    d.Event,
	}
	for _, o := range d.Options {
		r.Options = append(r.Options, optionFromDoc(o))
	}
	if t, ok := parseTimeField(d.Start); ok {
		r.Start = t
	}
	if t, ok := parseTimeField(d.End); ok {
		r.End = model.Some(t)
	}
	if d.CycleNumber != "" {
		r.CycleNumber = model.Some(d.CycleNumber)
	}
	if d.Status != nil {
		r.Status = model.Some(*d.Status)
	}
	for _, tabDoc := range d.Tables {
		r.Tables = append(r.Tables, tableFromDoc(tabDoc))
	}
	return r
}

func tableToDoc(t *model.Table) TableDoc {
	d := TableDoc{Column: append([]string(nil), t.Columns...)}
	for _, reg := range t.Registries {
		d.Function = append(d.Function, reg.URI)
	}
	for _, row := range t.Rows {
		d.Row = append(d.Row, row.Values)
	}
	return d
}

func tableFromDoc(d TableDoc) *model.Table {
	t := &model.Table{Columns: append([]string(nil), d.Column...)}
	for _, uri := range d.Function {
		t.Registries = append(t.Registries, model.Registry{URI: uri})
	}
	for _, row := range d.Row {
		t.Rows = append(t.Rows, model.Row{Values: row})
	}
	return t
}

// ReportFromModel builds the `report` container for every Result in m,
// spec.md §6.
func ReportFromModel(m *model.Model) *ReportDocument {
	doc := &ReportDocument{}
	if m.Agent != nil {
		doc.Agent = agentToDoc(m.Agent, ScopeReport)
	}
	for _, r := range m.Results {
		doc.Results = append(doc.Results, resultToDoc(r))
	}
	return doc
}

// MergeReportInto appends doc's results into m.Results, used for the
// round-trip tests spec.md §4.5 calls out.
func MergeReportInto(doc *ReportDocument, m *model.Model) {
	for _, rd := range doc.Results {
		m.Results = append(m.Results, resultFromDoc(rd))
	}
}
