package serialize_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/lmapcloud/lmapd/internal/serialize"
	"github.com/lmapcloud/lmapd/internal/serialize/jsonengine"
	"github.com/lmapcloud/lmapd/internal/serialize/xmlengine"
)

func sampleModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()

	a := model.NewAgent()
	require.NoError(t, a.SetAgentID("550e8400-e29b-41d4-a716-446655440000"))
	require.NoError(t, a.SetReportAgentID(true))
	m.Agent = a

	task := &model.Task{Name: "ping-task", Program: "/usr/bin/ping"}
	task.Options = append(task.Options, &model.Option{ID: "target", Value: model.Some("example.com")})
	m.Tasks = append(m.Tasks, task)

	ev := model.NewEvent("daily", model.EventPeriodic)
	require.NoError(t, ev.SetInterval(time.Hour))
	m.Events = append(m.Events, ev)

	s := model.NewSchedule("sched1", "daily")
	require.NoError(t, s.SetExecutionMode("sequential"))
	a1 := model.NewAction("act1", "ping-task")
	s.Actions = append(s.Actions, a1)
	m.Schedules = append(m.Schedules, s)

	return m
}

func TestJSONEngineConfigRoundTrip(t *testing.T) {
	eng := jsonengine.Engine{}
	m := sampleModel(t)

	out, err := eng.RenderConfig(m)
	require.NoError(t, err)
	require.Contains(t, out, "ping-task")

	got := model.New()
	require.NoError(t, eng.ParseConfig(strings.NewReader(out), got))

	require.Len(t, got.Tasks, 1)
	require.Equal(t, "ping-task", got.Tasks[0].Name)
	require.Len(t, got.Schedules, 1)
	require.Equal(t, "sched1", got.Schedules[0].Name)
	require.Equal(t, model.ExecutionModeSequential, got.Schedules[0].ExecutionMode)
	require.Equal(t, "550e8400-e29b-41d4-a716-446655440000", got.Agent.AgentID.OrElse(""))
}

func TestXMLEngineConfigRoundTrip(t *testing.T) {
	eng := xmlengine.Engine{}
	m := sampleModel(t)

	out, err := eng.RenderConfig(m)
	require.NoError(t, err)
	require.Contains(t, out, "ietf-lmap-control:lmap")

	got := model.New()
	require.NoError(t, eng.ParseConfig(strings.NewReader(out), got))

	require.Len(t, got.Tasks, 1)
	require.Equal(t, "ping-task", got.Tasks[0].Name)
	require.Len(t, got.Schedules, 1)
	require.Equal(t, "sched1", got.Schedules[0].Name)
}

func TestJSONEngineStateScopeOmitsFromConfig(t *testing.T) {
	eng := jsonengine.Engine{}
	m := sampleModel(t)
	m.Schedules[0].Counters.Invocations = 42
	m.Schedules[0].State = model.StateRunning

	out, err := eng.RenderConfig(m)
	require.NoError(t, err)
	require.NotContains(t, out, "42")

	stateOut, err := eng.RenderState(m)
	require.NoError(t, err)
	require.Contains(t, stateOut, "42")
}

func TestJSONEngineReportRoundTrip(t *testing.T) {
	eng := jsonengine.Engine{}
	m := sampleModel(t)
	status := 0
	m.Results = append(m.Results, &model.Result{
		Schedule: "sched1",
		Action:   "act1",
		Task:     "ping-task",
		Start:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:   model.Some(status),
		Tables:   []*model.Table{{Rows: []model.Row{{Values: []string{"1.2.3.4", "5ms"}}}}},
	})

	out, err := eng.RenderReport(m)
	require.NoError(t, err)

	got := model.New()
	require.NoError(t, eng.ParseReport(strings.NewReader(out), got))
	require.Len(t, got.Results, 1)
	require.Equal(t, "sched1", got.Results[0].Schedule)
	require.Len(t, got.Results[0].Tables, 1)
}

func TestEngineKind(t *testing.T) {
	var j serialize.Engine = jsonengine.Engine{}
	var x serialize.Engine = xmlengine.Engine{}
	require.Equal(t, "json", j.Kind())
	require.Equal(t, "xml", x.Kind())
}
