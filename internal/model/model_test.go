package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestModelValidate_DanglingTaskReference(t *testing.T) {
	m := New()
	m.Events = append(m.Events, NewEvent("ev", EventStartup))
	sched := NewSchedule("s1", "ev")
	sched.Actions = append(sched.Actions, NewAction("a1", "mtr"))
	m.Schedules = append(m.Schedules, sched)

	errs, _ := m.Validate()
	require.NotEmpty(t, errs)

	found := false
	for _, err := range errs {
		if err != nil && IsValidationError(err) {
			found = true
		}
	}
	require.True(t, found, "expected a validation-class error for dangling task reference %q", "mtr")
}

func TestModelValidate_Valid(t *testing.T) {
	m := New()
	task := &Task{Name: "echo", Program: "/bin/echo"}
	m.Tasks = append(m.Tasks, task)
	m.Events = append(m.Events, NewEvent("ev", EventStartup))
	sched := NewSchedule("s1", "ev")
	sched.Actions = append(sched.Actions, NewAction("a1", "echo"))
	m.Schedules = append(m.Schedules, sched)

	errs, warnings := m.Validate()
	require.Empty(t, errs)
	require.Empty(t, warnings)
}

func TestModelValidate_SelfLoopDestinationIsLegal(t *testing.T) {
	m := New()
	m.Tasks = append(m.Tasks, &Task{Name: "echo", Program: "/bin/echo"})
	m.Events = append(m.Events, NewEvent("ev", EventStartup))
	sched := NewSchedule("s1", "ev")
	action := NewAction("a1", "echo")
	action.Destinations = []string{"s1"}
	sched.Actions = append(sched.Actions, action)
	m.Schedules = append(m.Schedules, sched)

	errs, _ := m.Validate()
	require.Empty(t, errs)
}

func TestEvent_SetStartEnd_RejectsBadOrdering(t *testing.T) {
	e := NewEvent("ev", EventOneOff)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Second)
	err := e.SetStartEnd(Some(start), Some(end))
	require.Error(t, err)
}

func TestAgent_ReportFlagsRequireValue(t *testing.T) {
	a := NewAgent()
	require.Error(t, a.SetReportAgentID(true))
	require.NoError(t, a.SetAgentID("e9a3b3a0-0000-4000-8000-000000000000"))
	require.NoError(t, a.SetReportAgentID(true))
}

func TestSchedule_EndDurationMutuallyExclusive(t *testing.T) {
	s := NewSchedule("s1", "ev")
	err := s.SetEndOrDuration(Some("end-ev"), Some(time.Minute))
	require.Error(t, err)
}

func TestBitset64_WildcardDistinctFromEmpty(t *testing.T) {
	var empty Bitset64
	require.True(t, empty.IsEmpty())
	require.False(t, empty.Has(5))

	wild := Wildcard64()
	require.True(t, wild.Has(0))
	require.True(t, wild.Has(63))
	require.False(t, wild.IsEmpty())
}

func TestOption_Argv(t *testing.T) {
	o := &Option{ID: "x", Name: Some("--count"), Value: Some("10")}
	require.Equal(t, []string{"--count", "10"}, o.Argv())

	o2 := &Option{ID: "y", Value: Some("solo")}
	require.Equal(t, []string{"solo"}, o2.Argv())

	o3 := &Option{ID: "z"}
	require.Nil(t, o3.Argv())
}
